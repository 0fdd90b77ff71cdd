package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tigersai/internal/model"
)

type fakeStore struct {
	objects map[string][]byte
	putErr  error
}

func (s *fakeStore) PutObject(_ context.Context, name, _ string, data []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[name] = data
	return nil
}

func (s *fakeStore) PresignedURL(_ context.Context, name string) (string, error) {
	return "https://minio.local/exports/" + name, nil
}

func TestExportMonth_WritesTranscript(t *testing.T) {
	repo := &memConversationRepo{}
	march := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	seed(t, repo, 7, march, march.Add(time.Hour))
	seed(t, repo, 7, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	store := &fakeStore{}
	svc := NewExportService(NewConversationService(repo, time.UTC), store, time.UTC)

	url, err := svc.ExportMonth(context.Background(), sessionFor(7, "alice", model.RoleStudent), march, nil)
	require.NoError(t, err)
	require.Len(t, store.objects, 1)

	for name, data := range store.objects {
		assert.True(t, strings.HasPrefix(name, "7/2024-03-"))
		assert.True(t, strings.HasSuffix(url, name))

		var tr struct {
			OwnerID uint                      `json:"user_id"`
			Month   string                    `json:"month"`
			Entries []model.ConversationEntry `json:"conversations"`
		}
		require.NoError(t, json.Unmarshal(data, &tr))
		assert.EqualValues(t, 7, tr.OwnerID)
		assert.Equal(t, "2024-03", tr.Month)
		assert.Len(t, tr.Entries, 2)
	}
}

func TestExportMonth_Rejections(t *testing.T) {
	repo := &memConversationRepo{}
	conv := NewConversationService(repo, time.UTC)

	_, err := NewExportService(conv, nil, time.UTC).ExportMonth(context.Background(), sessionFor(7, "a", model.RoleStudent), time.Now(), nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewExportService(conv, &fakeStore{}, time.UTC).ExportMonth(context.Background(), nil, time.Now(), nil)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = NewExportService(conv, &fakeStore{putErr: errDB}, time.UTC).ExportMonth(context.Background(), sessionFor(7, "a", model.RoleStudent), time.Now(), nil)
	assert.ErrorIs(t, err, ErrStorage)
}
