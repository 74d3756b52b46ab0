package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService stores tool and employee photos in object storage.
// Object keys follow "<entity>/<id>/<random>.jpg".
type StorageService interface {
	UploadPhoto(ctx context.Context, entity string, entityID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error)
	GetPhotoURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	DeletePhoto(ctx context.Context, objectKey string) error
	EnsureBucketExists(ctx context.Context) error
}

type storageService struct {
	client *minio.Client
	bucket string
}

func NewStorageService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (StorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &storageService{client: client, bucket: bucket}, nil
}

func (s *storageService) UploadPhoto(ctx context.Context, entity string, entityID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	objectKey := fmt.Sprintf("%s/%s/%s.jpg", entity, entityID.String(), uuid.NewString())
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (s *storageService) GetPhotoURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (s *storageService) DeletePhoto(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}

func (s *storageService) EnsureBucketExists(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}
