// Package bind reads JSON request bodies. Bodies are capped at
// APP_MAX_BODY_BYTES (1 MiB by default); uploads are multipart and bounded by
// their own handler.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/campusprint/printhub/config"
	"github.com/campusprint/printhub/pkg/validate"
)

const defaultMaxBody = 1 << 20

// ErrEmptyBody is returned for a request without a body.
var ErrEmptyBody = errors.New("request body is empty")

// Decode reads r.Body into dest without validating it.
func Decode(r *http.Request, dest any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	limit := int64(config.Int("APP_MAX_BODY_BYTES", defaultMaxBody))
	if limit <= 0 {
		limit = defaultMaxBody
	}
	r.Body = http.MaxBytesReader(nil, r.Body, limit)

	err := json.NewDecoder(r.Body).Decode(dest)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return ErrEmptyBody
	case errors.As(err, &tooLarge):
		return fmt.Errorf("request body too large (max %d bytes)", tooLarge.Limit)
	default:
		return fmt.Errorf("invalid JSON: %w", err)
	}
}

// JSON decodes like Decode and then runs the validate tags on dest. A
// malformed body is an error; failed rules come back as a field map.
func JSON(r *http.Request, dest any) (map[string]string, error) {
	if err := Decode(r, dest); err != nil {
		return nil, err
	}
	if fields := validate.Struct(dest); validate.HasErrors(fields) {
		return fields, nil
	}
	return nil, nil
}
