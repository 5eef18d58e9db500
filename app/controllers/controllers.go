// Package controllers adapts HTTP requests to the services. Handlers take a
// *ctx.Context, read the principal placed there by the session guards and
// render models through the resource transformers.
package controllers

import (
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/campusprint/printhub/pkg/bind"
	"github.com/campusprint/printhub/pkg/ctx"
	"github.com/campusprint/printhub/pkg/storage"
)

// decode reads the JSON body into dest without running tag validation; the
// services validate their own inputs.
func decode(c *ctx.Context, dest any) bool {
	if err := bind.Decode(c.R, dest); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// wildcardKey returns the object key matched by a trailing "/*" route.
func wildcardKey(c *ctx.Context) string {
	key := c.Param("*")
	if c.R.URL.RawPath == "" {
		return key
	}
	if unescaped, err := url.PathUnescape(key); err == nil {
		return unescaped
	}
	return key
}

// serveObject streams obj and closes it.
func serveObject(c *ctx.Context, key string, obj *storage.Object) {
	defer obj.Body.Close()

	c.SetHeader("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(key)}))
	c.SetHeader("Cache-Control", "private, max-age=300")
	if !obj.ModTime.IsZero() {
		c.SetHeader("Last-Modified", obj.ModTime.UTC().Format(http.TimeFormat))
	}
	c.Stream(obj.ContentType, obj.Size, obj.Body)
}
