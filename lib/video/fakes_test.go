package videohandler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	entitystore "marketplace-backend/lib/approval/entity-store"
	"marketplace-backend/lib/rbac"
	uploadsessionstore "marketplace-backend/lib/video/session-store"
	"marketplace-backend/models"
	dbmodels "marketplace-backend/models/db"
)

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]dbmodels.UploadSession
	chunks   map[string]map[int]dbmodels.UploadChunk
	videos   map[string]dbmodels.Video
}

func (f *fakeSessionStore) Create(rec *dbmodels.UploadSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[rec.ID]; ok {
		return nil
	}
	f.sessions[rec.ID] = *rec
	return nil
}

func (f *fakeSessionStore) GetByID(id string) (*dbmodels.UploadSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeSessionStore) UpsertChunk(rec dbmodels.UploadChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chunks[rec.SessionID] == nil {
		f.chunks[rec.SessionID] = map[int]dbmodels.UploadChunk{}
	}
	f.chunks[rec.SessionID][rec.ChunkIndex] = rec
	return nil
}

func (f *fakeSessionStore) CountChunks(sessionID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.chunks[sessionID])), nil
}

func (f *fakeSessionStore) CompareAndSetStatus(id string, from models.UploadSessionStatus, updMap map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.sessions[id]
	if !ok || rec.Status != from {
		return false, nil
	}
	for key, value := range updMap {
		switch key {
		case "status":
			rec.Status = value.(models.UploadSessionStatus)
		case "video_id":
			rec.VideoID = value.(string)
		case "failed_chunk_index":
			index := value.(int)
			rec.FailedChunkIndex = &index
		case "fail_reason":
			rec.FailReason = value.(string)
		case "updated_at":
			rec.UpdatedAt = value.(time.Time)
		}
	}
	f.sessions[id] = rec
	return true, nil
}

func (f *fakeSessionStore) ListStale(before time.Time) ([]dbmodels.UploadSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []dbmodels.UploadSession{}
	for _, rec := range f.sessions {
		if rec.Status == models.UploadStatusUploading && rec.UpdatedAt.Before(before) {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (f *fakeSessionStore) DeleteChunks(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.chunks, sessionID)
	return nil
}

func (f *fakeSessionStore) GetVideo(id string) (*dbmodels.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.videos[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

type fakeEntityStore struct {
	entitystore.Provider
	sessions *fakeSessionStore
	seq      int
	err      error
}

func (f *fakeEntityStore) Create(rec interface{}) error {
	if f.err != nil {
		return f.err
	}
	video := rec.(*dbmodels.Video)
	f.seq++
	video.ID = fmt.Sprintf("video-%v", f.seq)
	f.sessions.mu.Lock()
	defer f.sessions.mu.Unlock()
	f.sessions.videos[video.ID] = *video
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func (f *fakeStorage) PutChunk(ctx context.Context, sessionID string, index int, data io.Reader, size int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("chunks/%s/%06d", sessionID, index)
	f.objects[key] = buf
	f.puts++
	return key, nil
}

func (f *fakeStorage) Assemble(ctx context.Context, sessionID string, totalChunks int, contentType string) (string, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []byte{}
	for index := 0; index < totalChunks; index++ {
		key := fmt.Sprintf("chunks/%s/%06d", sessionID, index)
		data, ok := f.objects[key]
		if !ok {
			return "", 0, fmt.Errorf("chunk %v missing", index)
		}
		result = append(result, data...)
	}
	key := "videos/" + sessionID
	f.objects[key] = result
	return key, int64(len(result)), nil
}

func (f *fakeStorage) GetObject(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return io.NopCloser(bytes.NewReader(f.objects[objectKey])), nil
}

func (f *fakeStorage) RemoveSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := fmt.Sprintf("chunks/%s/", sessionID)
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			delete(f.objects, key)
		}
	}
	return nil
}

func (f *fakeStorage) chunkCount(sessionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := fmt.Sprintf("chunks/%s/", sessionID)
	count := 0
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			count++
		}
	}
	return count
}

func (f *fakeStorage) MakeBucket(ctx context.Context) error {
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	submitted []string
}

func (f *fakeNotifier) EntityTransitioned(event models.TransitionEvent) {}
func (f *fakeNotifier) EntitySubmitted(kind models.EntityKind, entityID, ownerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, entityID)
}
func (f *fakeNotifier) AvailabilityChanged(kind models.EntityKind, entityID string) {}

type testEnv struct {
	handler  impl
	sessions *fakeSessionStore
	storage  *fakeStorage
	entities *fakeEntityStore
	notifier *fakeNotifier
	now      time.Time
}

func newTestEnv() *testEnv {
	rbac.NewHandler()
	env := &testEnv{
		sessions: &fakeSessionStore{
			sessions: map[string]dbmodels.UploadSession{},
			chunks:   map[string]map[int]dbmodels.UploadChunk{},
			videos:   map[string]dbmodels.Video{},
		},
		storage:  &fakeStorage{objects: map[string][]byte{}},
		notifier: &fakeNotifier{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	env.entities = &fakeEntityStore{sessions: env.sessions}
	env.handler = impl{
		sessionStore: env.sessions,
		withTx: func(fn func(sessionStore uploadsessionstore.Provider, entityStore entitystore.Provider) error) error {
			return fn(env.sessions, env.entities)
		},
		storage:     env.storage,
		access:      rbac.Instance,
		notifier:    env.notifier,
		now:         func() time.Time { return env.now },
		assembleTTL: time.Second,
	}
	return env
}
