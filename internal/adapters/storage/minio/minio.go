package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"fileflow/internal/config"
	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Adapter is an adapter for minio
type Adapter struct {
	client *minio.Client
	core   *minio.Core
	config config.MinioConfig
	logger *slog.Logger
}

// NewAdapter returns Adapter
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	core := minio.Core{Client: client}
	return &Adapter{client: client, config: cfg, core: &core, logger: logger}, nil
}

// PresignPut generates a presigned URL for a single-shot upload
func (a *Adapter) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, time.Time, error) {
	requestHeaders := make(http.Header)
	if contentType != "" {
		requestHeaders.Set("Content-Type", contentType)
	}

	presignedURL, err := a.client.PresignHeader(ctx, http.MethodPut, a.config.BucketName, key, ttl, nil, requestHeaders)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return presignedURL.String(), time.Now().Add(ttl), nil
}

// PresignGet generates a presigned download URL
func (a *Adapter) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	presignedURL, err := a.client.PresignedGetObject(ctx, a.config.BucketName, key, ttl, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return presignedURL.String(), time.Now().Add(ttl), nil
}

// PresignUploadPart generates a presigned URL for one multipart part
func (a *Adapter) PresignUploadPart(ctx context.Context, key, uploadID string, partNumber int, ttl time.Duration) (string, time.Time, error) {
	reqParams := make(url.Values)
	reqParams.Set("partNumber", fmt.Sprintf("%d", partNumber))
	reqParams.Set("uploadId", uploadID)

	presignedURL, err := a.core.PresignHeader(ctx, http.MethodPut, a.config.BucketName, key, ttl, reqParams, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate presigned URL for part: %w", err)
	}

	return presignedURL.String(), time.Now().Add(ttl), nil
}

// InitiateMultipart opens a provider-side multipart upload
func (a *Adapter) InitiateMultipart(ctx context.Context, key, contentType string) (string, error) {
	opts := minio.PutObjectOptions{
		ContentType: contentType,
	}
	uploadID, err := a.core.NewMultipartUpload(ctx, a.config.BucketName, key, opts)
	if err != nil {
		return "", fmt.Errorf("failed to init multipart upload: %w", err)
	}
	return uploadID, nil
}

// CompleteMultipart assembles the uploaded parts into the final object and
// returns its etag
func (a *Adapter) CompleteMultipart(ctx context.Context, key, uploadID string, parts []domain.CompletedPart) (string, error) {
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].PartNumber < parts[j].PartNumber
	})

	completeParts := make([]minio.CompletePart, 0, len(parts))
	for _, part := range parts {
		completeParts = append(completeParts, minio.CompletePart{
			PartNumber: part.PartNumber,
			ETag:       strings.Trim(part.ETag, "\""),
		})
	}

	opts := minio.PutObjectOptions{
		SendContentMd5: false,
	}

	info, err := a.core.CompleteMultipartUpload(ctx, a.config.BucketName, key, uploadID, completeParts, opts)
	if err != nil {
		var respErr minio.ErrorResponse
		if !errors.As(err, &respErr) {
			// No S3 response means the assembly may have happened anyway;
			// timeouts and dropped connections land here.
			return "", fmt.Errorf("%w: complete multipart upload: %w", domain.ErrOutcomeUnknown, err)
		}
		return "", fmt.Errorf("failed to complete multipart upload: %w", err)
	}

	return info.ETag, nil
}

// AbortMultipart discards a provider-side multipart upload and its parts.
// Aborting an upload that no longer exists is treated as success, which makes
// retrying a previously failed abort safe.
func (a *Adapter) AbortMultipart(ctx context.Context, key, uploadID string) error {
	err := a.core.AbortMultipartUpload(ctx, a.config.BucketName, key, uploadID)
	if err != nil {
		var respErr minio.ErrorResponse
		if errors.As(err, &respErr) && respErr.Code == "NoSuchUpload" {
			return nil
		}
		return fmt.Errorf("failed to abort multipart upload: %w", err)
	}

	a.logger.Info("multipart upload aborted",
		slog.String("key", key),
		slog.String("uploadID", uploadID))

	return nil
}

// ListParts lists uploaded parts with pagination
func (a *Adapter) ListParts(ctx context.Context, key, uploadID string, maxParts, partNumberMarker int) ([]domain.CompletedPart, int, error) {
	if maxParts <= 0 || maxParts > 1000 {
		maxParts = 1000 //max size for minio
	}

	result, err := a.core.ListObjectParts(ctx, a.config.BucketName, key, uploadID, partNumberMarker, maxParts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list parts: %w", err)
	}

	parts := make([]domain.CompletedPart, 0, len(result.ObjectParts))
	for _, part := range result.ObjectParts {
		parts = append(parts, domain.CompletedPart{
			PartNumber: part.PartNumber,
			ETag:       strings.Trim(part.ETag, "\""),
			SizeBytes:  part.Size,
		})
	}

	return parts, result.NextPartNumberMarker, nil
}

// HeadObject stats an object and maps an absent key to domain.ErrObjectNotFound
func (a *Adapter) HeadObject(ctx context.Context, key string) (*port.ObjectInfo, error) {
	info, err := a.client.StatObject(ctx, a.config.BucketName, key, minio.StatObjectOptions{})
	if err != nil {
		var respErr minio.ErrorResponse
		if errors.As(err, &respErr) && respErr.Code == "NoSuchKey" {
			return nil, domain.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get object info: %w", err)
	}

	return &port.ObjectInfo{
		ETag:        strings.Trim(info.ETag, "\""),
		SizeBytes:   info.Size,
		ContentType: info.ContentType,
	}, nil
}

// PutObject writes the body server-side and returns the stored etag
func (a *Adapter) PutObject(ctx context.Context, key, contentType string, body []byte) (string, error) {
	info, err := a.client.PutObject(ctx, a.config.BucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	return strings.Trim(info.ETag, "\""), nil
}

// DeleteObject deletes an object from storage
func (a *Adapter) DeleteObject(ctx context.Context, key string) error {
	err := a.client.RemoveObject(ctx, a.config.BucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	a.logger.Info("object deleted",
		slog.String("key", key),
		slog.String("bucket", a.config.BucketName))

	return nil
}
