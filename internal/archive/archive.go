// Package archive persists each day's raw batch so runs can be replayed and
// audited. The filesystem copy is always written; a MinIO copy is uploaded
// in addition when object storage is configured.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"boampwatch/internal/feed"
	"boampwatch/platform/config"
	"boampwatch/platform/logger"
)

// Archiver writes raw batches. minioClient is nil when object storage is not
// configured; the filesystem path is always active.
type Archiver struct {
	dir         string
	bucket      string
	minioClient *minio.Client
	log         *logger.Logger
}

func New(cfg config.ArchiveConfig, log *logger.Logger) (*Archiver, error) {
	a := &Archiver{
		dir:    cfg.GetArchiveDir(),
		bucket: cfg.GetMinioBucketRawBatches(),
		log:    log,
	}

	if cfg.IsMinIOEnabled() {
		client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
			Secure: cfg.GetMinIOUseSSL(),
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		a.minioClient = client
	}
	return a, nil
}

// StoreBatch writes the batch as boamp-<date>.json, indented for manual
// inspection. The filesystem write is authoritative; a MinIO upload failure
// is logged but does not fail the run.
func (a *Archiver) StoreBatch(ctx context.Context, date string, batch feed.Batch) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	name := fmt.Sprintf("boamp-%s.json", date)

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		a.log.ArchiveError(path, err)
		return fmt.Errorf("write archive %s: %w", path, err)
	}
	a.log.Info("batch archived", "path", path, "bytes", len(data))

	if a.minioClient != nil {
		if err := a.upload(ctx, name, data); err != nil {
			a.log.ArchiveError(a.bucket+"/"+name, err)
		}
	}
	return nil
}

func (a *Archiver) upload(ctx context.Context, name string, data []byte) error {
	exists, err := a.minioClient.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := a.minioClient.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", a.bucket, err)
		}
	}

	_, err = a.minioClient.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	a.log.Info("batch uploaded", "bucket", a.bucket, "object", name)
	return nil
}
