package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// metaDir holds one JSON sidecar per blob, mirroring the key layout. Keys
// under it are reserved.
const metaDir = ".meta"

type sidecar struct {
	ContentType string `json:"content_type"`
}

// Local is the filesystem driver.
type Local struct {
	root string
}

// NewLocal returns a Local disk rooted at root, which is made absolute
// relative to the working directory and created if missing.
func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage/local: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: mkdir root: %w", err)
	}
	return &Local{root: abs}, nil
}

// Root is the absolute directory the disk writes under.
func (d *Local) Root() string { return d.root }

func (d *Local) abs(key string) (string, error) {
	if !ValidKey(key) || key == metaDir || strings.HasPrefix(key, metaDir+"/") {
		return "", ErrInvalidKey
	}
	return filepath.Join(d.root, filepath.FromSlash(key)), nil
}

func (d *Local) metaPath(key string) string {
	return filepath.Join(d.root, metaDir, filepath.FromSlash(key)+".json")
}

// writeMeta records the content type given at Put. An empty type removes
// any earlier record so Open falls back to the extension.
func (d *Local) writeMeta(key string, meta Meta) error {
	path := d.metaPath(key)
	if meta.ContentType == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage/local: drop meta %s: %w", key, err)
		}
		return nil
	}
	b, err := json.Marshal(sidecar{ContentType: meta.ContentType})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir meta: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("storage/local: write meta %s: %w", key, err)
	}
	return nil
}

func (d *Local) contentType(key, full string) string {
	if b, err := os.ReadFile(d.metaPath(key)); err == nil {
		var sc sidecar
		if json.Unmarshal(b, &sc) == nil && sc.ContentType != "" {
			return sc.ContentType
		}
	}
	if ct := mime.TypeByExtension(filepath.Ext(full)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (d *Local) Put(_ context.Context, key string, r io.Reader, meta Meta) error {
	full, err := d.abs(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial blob.
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("storage/local: create %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("storage/local: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage/local: close %s: %w", key, err)
	}
	if err := d.writeMeta(key, meta); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("storage/local: rename %s: %w", key, err)
	}
	return nil
}

func (d *Local) Open(_ context.Context, key string) (*Object, error) {
	full, err := d.abs(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage/local: open %s: %w", key, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("storage/local: stat %s: %w", key, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	return &Object{Body: f, ContentType: d.contentType(key, full), Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (d *Local) Exists(_ context.Context, key string) (bool, error) {
	full, err := d.abs(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage/local: stat %s: %w", key, err)
	}
	return !info.IsDir(), nil
}

func (d *Local) Delete(_ context.Context, key string) error {
	full, err := d.abs(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", key, err)
	}
	if err := os.Remove(d.metaPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete meta %s: %w", key, err)
	}
	return nil
}
