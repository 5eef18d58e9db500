package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("uploads/u1/1700-a.pdf"))
	for _, k := range []string{"", "/etc/passwd", "uploads/../secret", "uploads//x", "a\\b", "uploads/./x", "uploads/u1/"} {
		assert.False(t, ValidKey(k), k)
	}
}

func TestLocalRoundTrip(t *testing.T) {
	d, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "uploads/u1/doc.pdf", strings.NewReader("%PDF-1.4"), Meta{ContentType: "application/pdf"}))

	ok, err := d.Exists(ctx, "uploads/u1/doc.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	obj, err := d.Open(ctx, "uploads/u1/doc.pdf")
	require.NoError(t, err)
	defer obj.Body.Close()
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))
	assert.Equal(t, int64(8), obj.Size)
	assert.Equal(t, "application/pdf", obj.ContentType)

	require.NoError(t, d.Delete(ctx, "uploads/u1/doc.pdf"))
	require.NoError(t, d.Delete(ctx, "uploads/u1/doc.pdf"))
	_, err = d.Open(ctx, "uploads/u1/doc.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalKeepsContentTypeWithoutExtension(t *testing.T) {
	d, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "uploads/u1/scan", strings.NewReader("%PDF-1.4"), Meta{ContentType: "application/pdf"}))
	obj, err := d.Open(ctx, "uploads/u1/scan")
	require.NoError(t, err)
	obj.Body.Close()
	assert.Equal(t, "application/pdf", obj.ContentType)

	// no type given: the extension, then octet-stream
	require.NoError(t, d.Put(ctx, "uploads/u1/scan", strings.NewReader("raw"), Meta{}))
	obj, err = d.Open(ctx, "uploads/u1/scan")
	require.NoError(t, err)
	obj.Body.Close()
	assert.Equal(t, "application/octet-stream", obj.ContentType)

	// a deleted blob leaves no type behind for its successor
	require.NoError(t, d.Put(ctx, "uploads/u1/page", strings.NewReader("x"), Meta{ContentType: "image/png"}))
	require.NoError(t, d.Delete(ctx, "uploads/u1/page"))
	require.NoError(t, d.Put(ctx, "uploads/u1/page", strings.NewReader("x"), Meta{}))
	obj, err = d.Open(ctx, "uploads/u1/page")
	require.NoError(t, err)
	obj.Body.Close()
	assert.Equal(t, "application/octet-stream", obj.ContentType)

	// the sidecar tree is not addressable as a key
	_, err = d.Open(ctx, ".meta/uploads/u1/scan.json")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLocalRejectsTraversal(t *testing.T) {
	d, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	err = d.Put(context.Background(), "../escape.pdf", strings.NewReader("x"), Meta{})
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = d.Open(context.Background(), "uploads/../../x")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
