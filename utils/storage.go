package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Stored files (object documents, partner logos, publication covers) live in a
// GCS bucket. The API hands out short-lived signed URLs; the database only
// keeps object keys.

type SignedUpload struct {
	UploadURL string            `json:"uploadUrl"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ObjectKey string            `json:"objectKey"`
	AccessURL string            `json:"accessUrl"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

type serviceAccountJSON struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

func storageBucket() (string, error) {
	bucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucket == "" {
		return "", errors.New("GCS_BUCKET not set")
	}
	return bucket, nil
}

func storageCredentials() (*serviceAccountJSON, error) {
	raw := os.Getenv("GCS_CREDENTIALS_JSON")
	if raw == "" {
		raw = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")
	}
	if raw == "" {
		return nil, errors.New("GCS_CREDENTIALS_JSON not set")
	}
	var sa serviceAccountJSON
	if err := json.Unmarshal([]byte(raw), &sa); err != nil {
		return nil, fmt.Errorf("parse storage credentials: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, errors.New("storage credentials missing client_email/private_key")
	}
	return &sa, nil
}

// SignUpload returns a signed PUT URL the client uploads the file to directly.
func SignUpload(ctx context.Context, objectKey, contentType string, expires time.Duration) (*SignedUpload, error) {
	bucket, err := storageBucket()
	if err != nil {
		return nil, err
	}
	sa, err := storageCredentials()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().UTC().Add(expires)
	url, err := storage.SignedURL(bucket, objectKey, &storage.SignedURLOptions{
		GoogleAccessID: sa.ClientEmail,
		PrivateKey:     []byte(sa.PrivateKey),
		Method:         "PUT",
		Expires:        expiresAt,
		ContentType:    contentType,
		Scheme:         storage.SigningSchemeV4,
	})
	if err != nil {
		return nil, err
	}

	access, err := SignAccess(ctx, objectKey, 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &SignedUpload{
		UploadURL: url,
		Method:    "PUT",
		Headers:   map[string]string{"Content-Type": contentType},
		ObjectKey: objectKey,
		AccessURL: access,
		ExpiresAt: expiresAt,
	}, nil
}

// SignAccess returns a signed GET URL for a stored object key.
func SignAccess(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	bucket, err := storageBucket()
	if err != nil {
		return "", err
	}
	sa, err := storageCredentials()
	if err != nil {
		return "", err
	}
	return storage.SignedURL(bucket, objectKey, &storage.SignedURLOptions{
		GoogleAccessID: sa.ClientEmail,
		PrivateKey:     []byte(sa.PrivateKey),
		Method:         "GET",
		Expires:        time.Now().UTC().Add(expires),
		Scheme:         storage.SigningSchemeV4,
	})
}

// DeleteStoredObject removes an object key from the bucket (entity deletes).
func DeleteStoredObject(ctx context.Context, objectKey string) error {
	bucket, err := storageBucket()
	if err != nil {
		return err
	}
	var opts []option.ClientOption
	if raw := os.Getenv("GCS_CREDENTIALS_JSON"); raw != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(raw)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Bucket(bucket).Object(objectKey).Delete(ctx)
}
