package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// assetUploader is the slice of the Cloudinary upload API used here.
type assetUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryStorage implements Uploader on a Cloudinary account.
type CloudinaryStorage struct {
	upload assetUploader
}

// NewCloudinaryStorage builds a client from account credentials and pings the
// Admin API so rejected credentials stop the process before it serves.
func NewCloudinaryStorage(ctx context.Context, cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}

	if err := ping(ctx, &cld.Admin); err != nil {
		return nil, err
	}

	return &CloudinaryStorage{upload: &cld.Upload}, nil
}

type pinger interface {
	Ping(ctx context.Context) (*admin.PingResult, error)
}

func ping(ctx context.Context, p pinger) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	res, err := p.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping cloudinary: %w: %w", ErrProviderUnavailable, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("ping cloudinary: %w: %s", ErrProviderRejected, res.Error.Message)
	}
	return nil
}

// Upload streams the file to Cloudinary inside opts.Folder.
func (s *CloudinaryStorage) Upload(ctx context.Context, file File, opts Options) (Descriptor, error) {
	if file.Reader == nil {
		return nil, fmt.Errorf("%w: no file content", ErrInvalidInput)
	}

	res, err := s.upload.Upload(ctx, file.Reader, uploader.UploadParams{
		Folder: opts.Folder,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w: %w", ErrProviderUnavailable, err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %w: %s", ErrProviderRejected, res.Error.Message)
	}
	return cloudinaryDescriptor(res), nil
}

// cloudinaryDescriptor returns the raw decoded response body the SDK keeps in
// res.Response. The typed fields are copied only when that body is missing.
func cloudinaryDescriptor(res *uploader.UploadResult) Descriptor {
	if d, ok := rawDescriptor(res.Response); ok {
		return d
	}

	d := Descriptor{
		"asset_id":          res.AssetID,
		"public_id":         res.PublicID,
		"version":           res.Version,
		"version_id":        res.VersionID,
		"signature":         res.Signature,
		"format":            res.Format,
		"resource_type":     res.ResourceType,
		"created_at":        res.CreatedAt.UTC().Format(time.RFC3339),
		"tags":              res.Tags,
		"bytes":             res.Bytes,
		"type":              res.Type,
		"etag":              res.Etag,
		"url":               res.URL,
		"secure_url":        res.SecureURL,
		"original_filename": res.OriginalFilename,
	}
	if res.Width > 0 || res.Height > 0 {
		d["width"] = res.Width
		d["height"] = res.Height
	}
	if len(res.Tags) == 0 {
		d["tags"] = []string{}
	}
	return d
}

// rawDescriptor unwraps the SDK's Response value, which is stored behind a
// pointer to the decoded JSON object.
func rawDescriptor(raw interface{}) (Descriptor, bool) {
	switch v := raw.(type) {
	case map[string]interface{}:
		return Descriptor(v), true
	case *map[string]interface{}:
		if v != nil {
			return Descriptor(*v), true
		}
	case *interface{}:
		if v != nil {
			return rawDescriptor(*v)
		}
	}
	return nil, false
}
