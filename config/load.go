package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strconv"
	"strings"
)

// source yields configuration pairs. A source whose file does not exist
// yields nothing.
type source func() (map[string]string, error)

// loadFrom replaces the live values with the defaults overlaid by each
// source in turn.
func loadFrom(sources ...source) error {
	merged := defaultValues()
	for _, src := range sources {
		kv, err := src()
		if err != nil {
			return err
		}
		maps.Copy(merged, kv)
	}

	mu.Lock()
	values = merged
	mu.Unlock()
	return nil
}

// jsonFile reads a flat JSON object. Keys are upper-cased; strings, numbers
// and booleans are kept, nested values are skipped.
func jsonFile(path string) source {
	return func() (map[string]string, error) {
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		out := make(map[string]string, len(doc))
		for k, v := range doc {
			key := strings.ToUpper(strings.TrimSpace(k))
			switch v := v.(type) {
			case string:
				out[key] = strings.TrimSpace(v)
			case float64:
				out[key] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				out[key] = strconv.FormatBool(v)
			}
		}
		delete(out, "")
		return out, nil
	}
}

// dotenvFile reads KEY=value lines. It accepts a leading "export", single
// or double quotes, and " #" comments after unquoted values.
func dotenvFile(path string) source {
	return func() (map[string]string, error) {
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		defer f.Close()

		out := map[string]string{}
		sc := bufio.NewScanner(f)
		for n := 1; sc.Scan(); n++ {
			line := strings.TrimSpace(sc.Text())
			if line == "" || line[0] == '#' {
				continue
			}
			line = strings.TrimPrefix(line, "export ")
			key, value, ok := strings.Cut(line, "=")
			key = strings.ToUpper(strings.TrimSpace(key))
			if !ok || key == "" {
				return nil, fmt.Errorf("config: %s:%d: expected KEY=value", path, n)
			}
			out[key] = dotenvValue(strings.TrimSpace(value))
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		return out, nil
	}
}

func dotenvValue(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	if i := strings.Index(v, " #"); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// environment takes every process variable, so containers can configure
// any key without files.
func environment(environ []string) source {
	return func() (map[string]string, error) {
		out := make(map[string]string, len(environ))
		for _, kv := range environ {
			if key, value, ok := strings.Cut(kv, "="); ok && key != "" {
				out[key] = value
			}
		}
		return out, nil
	}
}
