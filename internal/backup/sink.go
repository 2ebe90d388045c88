package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// FileSink writes backups into a local directory
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) Write(ctx context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return fmt.Errorf("creating backup dir: %w", err)
	}

	path := filepath.Join(s.Dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return os.Rename(tmp, path)
}

// GCSSink uploads backups to a Cloud Storage bucket. Objects are never overwritten.
type GCSSink struct {
	Client     *storage.Client
	BucketName string
	log        *zap.Logger
}

func NewGCSSink(ctx context.Context, bucketName string, log *zap.Logger) (*GCSSink, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GCSSink{Client: client, BucketName: bucketName, log: log}, nil
}

func (g *GCSSink) Close() {
	if g.Client == nil {
		return
	}
	if err := g.Client.Close(); err != nil {
		g.log.Warn("closing GCS client", zap.Error(err))
	}
}

func (g *GCSSink) Write(ctx context.Context, name string, data []byte) error {
	object := g.Client.Bucket(g.BucketName).Object(name)

	writer := object.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finishing upload of %s: %w", name, err)
	}
	return nil
}
