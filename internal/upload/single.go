// Package upload parses multipart request bodies ahead of the route handler.
package upload

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/mediaupload/service/internal/response"
)

type contextKey string

const formKey contextKey = "uploadForm"

// File is the single file bound from a multipart body.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64

	header *multipart.FileHeader
}

// Open returns the file content. The caller must close it.
func (f *File) Open() (multipart.File, error) {
	return f.header.Open()
}

// Form is the parsed request: at most one file plus the plain fields.
type Form struct {
	File   *File
	Fields map[string]string
}

// FromContext returns the form bound by Single. ok is false when the stage
// did not run for this request.
func FromContext(ctx context.Context) (*Form, bool) {
	f, ok := ctx.Value(formKey).(*Form)
	return f, ok
}

// Single returns middleware that parses a multipart body and binds at most one
// file under field. Parts larger than maxMemory spill to temporary files,
// which are removed once the handler returns. Files under other field names
// are ignored; a body that is not multipart binds nothing.
func Single(field string, maxMemory int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			form := &Form{Fields: map[string]string{}}

			if !isMultipart(r) {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), formKey, form)))
				return
			}

			err := r.ParseMultipartForm(maxMemory)
			switch {
			case errors.Is(err, http.ErrNotMultipart):
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), formKey, form)))
				return
			case err != nil:
				response.BadRequest(w, "malformed multipart body")
				return
			}
			defer func() { _ = r.MultipartForm.RemoveAll() }()

			for k, vs := range r.MultipartForm.Value {
				if len(vs) > 0 {
					form.Fields[k] = vs[len(vs)-1]
				}
			}

			files := r.MultipartForm.File[field]
			if len(files) > 1 {
				response.BadRequest(w, "unexpected field")
				return
			}
			if len(files) == 1 {
				fh := files[0]
				form.File = &File{
					Field:       field,
					Filename:    fh.Filename,
					ContentType: fh.Header.Get("Content-Type"),
					Size:        fh.Size,
					header:      fh,
				}
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), formKey, form)))
		})
	}
}

// isMultipart reports whether the body is declared as multipart/form-data.
// Other bodies are never parsed, so a bad urlencoded body still binds nothing.
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
