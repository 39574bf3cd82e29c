package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JaimeStill/soundslike/pkg/lifecycle"
)

const minioNoSuchKey = "NoSuchKey"

type minioStore struct {
	client *minio.Client
	bucket string
	region string
	logger *slog.Logger
}

func newMinIO(cfg *Config, logger *slog.Logger) (*minioStore, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &minioStore{
		client: client,
		bucket: cfg.ContainerName,
		region: cfg.MinIO.Region,
		logger: logger,
	}, nil
}

func (m *minioStore) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("starting storage system")

	lc.OnStartup(func() {
		ctx := lc.Context()

		exists, err := m.client.BucketExists(ctx, m.bucket)
		if err != nil {
			m.logger.Error("storage bucket lookup failed", "error", err)
			return
		}
		if !exists {
			opts := minio.MakeBucketOptions{Region: m.region}
			if err := m.client.MakeBucket(ctx, m.bucket, opts); err != nil {
				m.logger.Error("storage bucket initialization failed", "error", err)
				return
			}
		}

		m.logger.Info("storage bucket ready", "bucket", m.bucket)
	})

	return nil
}

func (m *minioStore) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := m.client.PutObject(ctx, m.bucket, key, reader, -1, opts); err != nil {
		return fmt.Errorf("upload object %s: %w", key, err)
	}

	return nil
}

func (m *minioStore) Download(ctx context.Context, key string) (*Blob, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("download object %s: %w", key, err)
	}

	// GetObject is lazy; Stat surfaces a missing key.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}

	return &Blob{
		Body:          obj,
		ContentType:   info.ContentType,
		ContentLength: info.Size,
	}, nil
}

func (m *minioStore) Delete(ctx context.Context, key string) error {
	exists, err := m.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}

	return nil
}

func (m *minioStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("check object existence %s: %w", key, err)
	}

	return true, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == minioNoSuchKey
}
