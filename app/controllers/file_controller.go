package controllers

import (
	"errors"
	"net/http"

	"github.com/campusprint/printhub/app/services"
	"github.com/campusprint/printhub/pkg/ctx"
)

// multipart framing allowance on top of the document itself
const uploadEnvelope = 1 << 20

// uploadMemory is how much of a multipart body is buffered in memory before
// spilling to a temp file.
const uploadMemory = 8 << 20

type FileController struct {
	files *services.FileService
}

func NewFileController(files *services.FileService) *FileController {
	return &FileController{files: files}
}

// Upload handles POST /api/files/upload with a multipart "file" field.
func (f *FileController) Upload(c *ctx.Context) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, services.MaxUploadBytes+uploadEnvelope)
	if err := c.R.ParseMultipartForm(uploadMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			fail(c, services.ErrFileTooLarge)
			return
		}
		fail(c, services.ErrNoFile)
		return
	}
	defer c.R.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := c.R.FormFile("file")
	if err != nil {
		fail(c, services.ErrNoFile)
		return
	}
	defer file.Close()

	up, err := f.files.Upload(c.Context(), currentIdentity(c).ID,
		header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(up)
}

// Show handles GET /api/files/* for the uploading student.
func (f *FileController) Show(c *ctx.Context) {
	key := wildcardKey(c)
	obj, err := f.files.OpenForUser(c.Context(), currentIdentity(c).ID, key)
	if err != nil {
		fail(c, err)
		return
	}
	serveObject(c, key, obj)
}
