package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// sniffLen is how many leading bytes are inspected to detect the format.
const sniffLen = 3072

// objectPutter is the slice of *minio.Client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioStorage implements Uploader using a MinIO (or any S3-compatible) backend.
// Descriptors mirror the keys a hosted media provider returns so clients can
// switch providers without changing how they read the response.
type MinioStorage struct {
	client     objectPutter
	bucket     string
	publicBase string
	now        func() time.Time
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists with a public-read
// policy, and returns a ready-to-use MinioStorage. Bad credentials fail here.
func NewMinioStorage(ctx context.Context, log *zap.Logger, endpoint, accessKey, secretKey, bucket, publicBase string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		log.Info("storage: created bucket", zap.String("bucket", bucket))
	}

	if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	return newMinioStorage(client, bucket, publicBase), nil
}

func newMinioStorage(client objectPutter, bucket, publicBase string) *MinioStorage {
	return &MinioStorage{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		now:        time.Now,
	}
}

// Upload streams the file to the bucket under <folder>/<uuid><ext>.
func (s *MinioStorage) Upload(ctx context.Context, file File, opts Options) (Descriptor, error) {
	if file.Reader == nil {
		return nil, fmt.Errorf("%w: no file content", ErrInvalidInput)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Reader, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: read file: %w", ErrInvalidInput, err)
	}
	head = head[:n]
	detected := mimetype.Detect(head)

	contentType := file.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detected.String()
	}

	ext := objectExtension(file.Filename, detected)

	id := uuid.NewString()
	key := path.Join(strings.Trim(opts.Folder, "/"), id+ext)

	info, err := s.client.PutObject(ctx, s.bucket, key, io.MultiReader(bytes.NewReader(head), file.Reader), file.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", key, classifyS3Error(err))
	}

	url := s.publicURL(key)
	d := Descriptor{
		"public_id":         strings.TrimSuffix(key, ext),
		"format":            strings.TrimPrefix(ext, "."),
		"resource_type":     resourceType(contentType),
		"bytes":             info.Size,
		"etag":              info.ETag,
		"url":               url,
		"folder":            opts.Folder,
		"original_filename": strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename)),
		"created_at":        s.now().UTC().Format(time.RFC3339),
	}
	if strings.HasPrefix(url, "https://") {
		d["secure_url"] = url
	}
	if info.VersionID != "" {
		d["version_id"] = info.VersionID
	}
	return d, nil
}

// objectExtension picks the key suffix. The filename's own extension wins
// when the detected format agrees with it or detection only found generic
// text or binary; otherwise the detected format's canonical extension is used.
func objectExtension(filename string, detected *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return detected.Extension()
	}
	if detected.Extension() == "" || detected.Is("text/plain") {
		return ext
	}
	if t := mime.TypeByExtension(ext); t != "" && detected.Is(t) {
		return ext
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Extension() == ext {
			return ext
		}
	}
	return detected.Extension()
}

// publicURL returns the browser-accessible URL for the given key.
func (s *MinioStorage) publicURL(key string) string {
	return s.publicBase + "/" + key
}

// classifyS3Error maps an S3 error response to a failure kind. A 4xx from the
// service is a refusal; anything else, including transport errors, is an outage.
func classifyS3Error(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return fmt.Errorf("%w: %s: %w", ErrProviderRejected, resp.Code, err)
	}
	return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
}

func resourceType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"), strings.HasPrefix(contentType, "audio/"):
		return "video"
	default:
		return "raw"
	}
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
