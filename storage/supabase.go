package storage

import (
	"context"
	"fmt"
	"io"

	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"
)

type SupabaseStorage struct {
	client *supa.Client
	bucket string
}

func NewSupabaseStorage(client *supa.Client, bucket string) *SupabaseStorage {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &SupabaseStorage{client: client, bucket: bucket}
}

func (s *SupabaseStorage) Upload(ctx context.Context, objectPath string, body io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cacheControl := "3600"
	upsert := false
	opts := storage_go.FileOptions{
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	}
	if contentType != "" {
		opts.ContentType = &contentType
	}

	if _, err := s.client.Storage.UploadFile(s.bucket, objectPath, body, opts); err != nil {
		return fmt.Errorf("uploading %s: %w", objectPath, err)
	}
	return nil
}

func (s *SupabaseStorage) PublicURL(objectPath string) string {
	return s.client.Storage.GetPublicUrl(s.bucket, objectPath).SignedURL
}

func (s *SupabaseStorage) Remove(ctx context.Context, objectPaths ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.Storage.RemoveFile(s.bucket, objectPaths); err != nil {
		return fmt.Errorf("removing %v: %w", objectPaths, err)
	}
	return nil
}
