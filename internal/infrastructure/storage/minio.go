package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/interview-coach/pkg/config"
)

// ResumeStore resolves resume attachments kept in object storage
type ResumeStore struct {
	client    *minio.Client
	bucket    string
	publicURL string // Public URL for generating accessible URLs (e.g., https://minio.example.com)
}

// NewResumeStore creates a new MinIO-backed resume store
func NewResumeStore(ctx context.Context, cfg *config.StorageConfig) (*ResumeStore, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &ResumeStore{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: cfg.PublicURL,
	}
	if store.publicURL == "" {
		store.publicURL = minioClient.EndpointURL().String()
	}

	if err := store.ensureBucketWithPolicy(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return store, nil
}

// ensureBucketWithPolicy ensures bucket exists and has public read policy
func (s *ResumeStore) ensureBucketWithPolicy(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	// resume_url is handed to reviewers as a plain link, so objects must be publicly readable
	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"AWS": ["*"]},
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/*"]
			}
		]
	}`, s.bucket)

	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}

	return nil
}

// PublicURL returns the public retrieval URL of a stored resume path
func (s *ResumeStore) PublicURL(path string) string {
	return BuildPublicURL(s.publicURL, s.bucket, path)
}

// Exists reports whether an object is stored at path
func (s *ResumeStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, strings.TrimLeft(path, "/"), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat object: %w", err)
}

// BuildPublicURL joins base, bucket and path with single slashes.
// An empty path yields an empty URL.
func BuildPublicURL(base, bucket, path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return ""
	}
	parts := make([]string, 0, 3)
	if b := strings.TrimRight(base, "/"); b != "" {
		parts = append(parts, b)
	}
	if bk := strings.Trim(bucket, "/"); bk != "" {
		parts = append(parts, bk)
	}
	parts = append(parts, path)
	return strings.Join(parts, "/")
}

// StaticURLs builds public URLs without talking to object storage
type StaticURLs struct {
	Base   string
	Bucket string
}

// PublicURL implements the same contract as ResumeStore.PublicURL
func (s StaticURLs) PublicURL(path string) string {
	return BuildPublicURL(s.Base, s.Bucket, path)
}
