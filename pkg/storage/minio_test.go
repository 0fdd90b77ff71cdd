package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tigersai/internal/config"
)

func TestInitMinIO_DisabledWithoutEndpoint(t *testing.T) {
	s, err := InitMinIO(config.MinIOConfig{})
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestPresignedURL_IsOffline(t *testing.T) {
	s, err := New(config.MinIOConfig{
		Endpoint:        "minio.invalid:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "conversation-exports",
		Region:          "us-east-1",
		URLExpiry:       5 * time.Minute,
	})
	require.NoError(t, err)

	u, err := s.PresignedURL(context.Background(), "7/2024-03.json")
	require.NoError(t, err)
	assert.Contains(t, u, "http://minio.invalid:9000/conversation-exports/7/2024-03.json")
	assert.Contains(t, u, "X-Amz-Expires=300")
	assert.Contains(t, u, "X-Amz-Signature=")
}

func TestNew_DefaultsExpiry(t *testing.T) {
	s, err := New(config.MinIOConfig{Endpoint: "localhost:9000", BucketName: "b", Region: "us-east-1"})
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, s.expiry)
}
