package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mediaupload/service/internal/storage"
	"github.com/mediaupload/service/internal/upload"
)

type fakeUploader struct {
	calls   int
	file    storage.File
	content []byte
	opts    storage.Options
	result  storage.Descriptor
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, file storage.File, opts storage.Options) (storage.Descriptor, error) {
	f.calls++
	f.file, f.opts = file, opts
	b, err := io.ReadAll(file.Reader)
	if err != nil {
		return nil, err
	}
	f.content = b
	return f.result, f.err
}

func newTestHandler(store storage.Uploader) http.Handler {
	log := zap.NewNop()
	h := NewHandler(NewService(store, "project3-example", log), log)
	return upload.Single("media_file", 1<<20)(http.HandlerFunc(h.Upload))
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	w, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/media/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadPassesDescriptorThrough(t *testing.T) {
	fake := &fakeUploader{result: storage.Descriptor{
		"url":    "https://cdn.example/test.jpg",
		"size":   10240,
		"format": "jpg",
	}}
	content := bytes.Repeat([]byte{0xAB}, 10240)

	rr := httptest.NewRecorder()
	newTestHandler(fake).ServeHTTP(rr, uploadRequest(t, "media_file", "test.jpg", content))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	want := `{"format":"jpg","size":10240,"url":"https://cdn.example/test.jpg"}`
	if got := strings.TrimSpace(rr.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if fake.calls != 1 {
		t.Fatalf("upload calls = %d, want 1", fake.calls)
	}
	if fake.opts.Folder != "project3-example" {
		t.Errorf("folder = %q", fake.opts.Folder)
	}
	if fake.file.Filename != "test.jpg" || fake.file.Size != 10240 {
		t.Errorf("file = %+v", fake.file)
	}
	if !bytes.Equal(fake.content, content) {
		t.Error("provider did not receive the uploaded bytes")
	}
}

func TestUploadWrongFieldSkipsProvider(t *testing.T) {
	fake := &fakeUploader{result: storage.Descriptor{"url": "unused"}}

	rr := httptest.NewRecorder()
	newTestHandler(fake).ServeHTTP(rr, uploadRequest(t, "wrong_field", "test.jpg", []byte{0xFF, 0xD8}))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"msg":"failed to upload file"}` {
		t.Errorf("body = %s", got)
	}
	if fake.calls != 0 {
		t.Errorf("upload calls = %d, want 0", fake.calls)
	}
}

func TestUploadWithoutStage(t *testing.T) {
	log := zap.NewNop()
	h := NewHandler(NewService(&fakeUploader{}, "x", log), log)

	rr := httptest.NewRecorder()
	h.Upload(rr, httptest.NewRequest(http.MethodPost, "/api/media/upload", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestUploadMapsProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid input",
			err:        fmt.Errorf("%w: empty", storage.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantMsg:    MsgNoFile,
		},
		{
			name:       "rejected",
			err:        fmt.Errorf("cloudinary upload: %w: Invalid image file", storage.ErrProviderRejected),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "upload rejected by storage provider",
		},
		{
			name:       "unavailable",
			err:        fmt.Errorf("cloudinary upload: %w: %w", storage.ErrProviderUnavailable, errors.New("i/o timeout")),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "storage provider unavailable",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUploader{err: tt.err}
			rr := httptest.NewRecorder()
			newTestHandler(fake).ServeHTTP(rr, uploadRequest(t, "media_file", "a.jpg", []byte("data")))

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			want := fmt.Sprintf(`{"msg":%q}`, tt.wantMsg)
			if got := strings.TrimSpace(rr.Body.String()); got != want {
				t.Errorf("body = %s, want %s", got, want)
			}
		})
	}
}
