// Package storage defines the media-provider abstraction used by the upload route.
// Swap implementations by changing the concrete type injected at startup:
// Cloudinary for hosted media, or MinIO for any S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"io"
)

// Failure kinds returned (wrapped) by every Uploader.
var (
	// ErrInvalidInput means the request itself cannot be uploaded.
	ErrInvalidInput = errors.New("invalid input")
	// ErrProviderRejected means the provider answered and refused the upload.
	ErrProviderRejected = errors.New("provider rejected upload")
	// ErrProviderUnavailable means the provider could not be reached or failed.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// Kind names the failure class of an upload error.
type Kind string

const (
	KindNone                Kind = ""
	KindInvalidInput        Kind = "invalid_input"
	KindProviderRejected    Kind = "provider_rejected"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindUnknown             Kind = "unknown"
)

// KindOf classifies err by the sentinel it wraps.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrProviderRejected):
		return KindProviderRejected
	case errors.Is(err, ErrProviderUnavailable):
		return KindProviderUnavailable
	default:
		return KindUnknown
	}
}

// Descriptor is the provider's metadata for a stored asset. Its shape is
// owned by the provider, so it stays an open mapping.
type Descriptor map[string]any

// File is one incoming file ready to be streamed to a provider.
type File struct {
	Filename    string
	ContentType string
	Size        int64 // -1 when unknown
	Reader      io.Reader
}

// Options tune where and how a file is stored.
type Options struct {
	// Folder is the destination folder or key prefix.
	Folder string
}

// Uploader stores a file with a remote provider and returns its descriptor.
type Uploader interface {
	Upload(ctx context.Context, file File, opts Options) (Descriptor, error)
}
