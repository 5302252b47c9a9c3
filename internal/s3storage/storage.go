// Package s3storage copies the gallery to an S3-compatible bucket. It is an
// export only: the local directory remains the catalogue.
package s3storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/PhotoDrop/internal/config"
)

const (
	originalsPrefix = "originals"
	thumbsPrefix    = "thumbs"
)

// objectAPI is the subset of *minio.Client used for backups.
type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	FPutObject(ctx context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Source lists what a backup copies. *storage.Store implements it.
type Source interface {
	Root() string
	ThumbDir() string
	ListOriginals() ([]string, error)
	ListThumbs() (map[string]bool, error)
}

// Storage wraps MinIO/S3 interactions for gallery backups.
type Storage struct {
	client objectAPI
	bucket string
	region string
}

// Report counts what a backup did.
type Report struct {
	Uploaded int
	Skipped  int
}

// New creates a MinIO client from the Config.
func New(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Storage{client: client, bucket: cfg.S3Bucket, region: cfg.S3Region}, nil
}

// EnsureBucket makes sure the backup bucket exists before use.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Backup uploads every original and thumbnail under originals/ and thumbs/.
// Objects already present with the same size are left alone.
func (s *Storage) Backup(ctx context.Context, src Source) (Report, error) {
	var report Report
	if err := s.EnsureBucket(ctx); err != nil {
		return report, err
	}
	originals, err := src.ListOriginals()
	if err != nil {
		return report, err
	}
	for _, name := range originals {
		if err := s.copyFile(ctx, filepath.Join(src.Root(), name), path.Join(originalsPrefix, name), &report); err != nil {
			return report, err
		}
	}
	thumbs, err := src.ListThumbs()
	if err != nil {
		return report, err
	}
	for name := range thumbs {
		if err := s.copyFile(ctx, filepath.Join(src.ThumbDir(), name), path.Join(thumbsPrefix, name), &report); err != nil {
			return report, err
		}
	}
	log.Info().Str("bucket", s.bucket).Int("uploaded", report.Uploaded).Int("skipped", report.Skipped).Msg("backup finished")
	return report, nil
}

func (s *Storage) copyFile(ctx context.Context, file, key string, report *Report) error {
	st, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("stat %s: %w", file, err)
	}
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	switch {
	case err == nil && info.Size == st.Size():
		report.Skipped++
		return nil
	case err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey":
		return fmt.Errorf("stat object %s: %w", key, err)
	}
	opts := minio.PutObjectOptions{ContentType: contentType(key)}
	if _, err := s.client.FPutObject(ctx, s.bucket, key, file, opts); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	report.Uploaded++
	log.Debug().Str("key", key).Int64("bytes", st.Size()).Msg("object uploaded")
	return nil
}

func contentType(key string) string {
	switch path.Ext(key) {
	case ".jpg", ".jpeg", ".JPG", ".JPEG":
		return "image/jpeg"
	case ".png", ".PNG":
		return "image/png"
	case ".gif", ".GIF":
		return "image/gif"
	case ".webp", ".WEBP":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
