//go:build integration
// +build integration

package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.uber.org/zap"
)

func TestMinioStorageAgainstContainer(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}

	// MinIO tag can be overridden by MINIO_TEST_TAG
	tag := os.Getenv("MINIO_TEST_TAG")
	if tag == "" {
		tag = "RELEASE.2024-01-31T20-20-33Z"
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "minio/minio",
		Tag:        tag,
		Cmd:        []string{"server", "/data"},
		Env: []string{
			"MINIO_ROOT_USER=minio",
			"MINIO_ROOT_PASSWORD=minio123",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		t.Fatalf("could not start minio: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	endpoint := "localhost:" + resource.GetPort("9000/tcp")
	if err := pool.Retry(func() error {
		resp, err := http.Get("http://" + endpoint + "/minio/health/live")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("minio not ready: %d", resp.StatusCode)
		}
		return nil
	}); err != nil {
		t.Fatalf("minio not ready: %v", err)
	}

	ctx := context.Background()
	s, err := NewMinioStorage(ctx, zap.NewNop(), endpoint, "minio", "minio123", "media", "http://"+endpoint+"/media", false)
	if err != nil {
		t.Fatalf("NewMinioStorage: %v", err)
	}

	content := jpegBytes(10240)
	d, err := s.Upload(ctx, File{Filename: "test.jpg", Size: int64(len(content)), Reader: bytes.NewReader(content)}, Options{Folder: "project3-example"})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	resp, err := http.Get(d["url"].(string))
	if err != nil {
		t.Fatalf("fetch uploaded object: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("public GET status = %d, want 200", resp.StatusCode)
	}

	if _, err := NewMinioStorage(ctx, zap.NewNop(), endpoint, "minio", "wrong-secret", "media", "", false); err == nil {
		t.Fatal("expected startup failure with a wrong secret key")
	}
}
