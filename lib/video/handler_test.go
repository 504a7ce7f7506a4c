package videohandler

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	apperrors "marketplace-backend/lib/utils/app-errors"
	"marketplace-backend/models"
	videoapimodels "marketplace-backend/models/api/video"
	dbmodels "marketplace-backend/models/db"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var (
	farmer   = models.Principal{UserID: "farmer-1", Role: models.UserRoleFarmer}
	stranger = models.Principal{UserID: "farmer-2", Role: models.UserRoleFarmer}
	admin    = models.Principal{UserID: "admin-1", Role: models.UserRoleAdmin}
)

func chunks(sessionID string, payload []byte, chunkSize int) []videoapimodels.ChunkData {
	total := (len(payload) + chunkSize - 1) / chunkSize
	result := []videoapimodels.ChunkData{}
	for index := 0; index < total; index++ {
		end := min((index+1)*chunkSize, len(payload))
		chunk := videoapimodels.ChunkData{
			SessionID:   sessionID,
			ChunkIndex:  index,
			TotalChunks: total,
			Data:        payload[index*chunkSize : end],
		}
		if index == 0 {
			chunk.Title = "Наш урожай"
			chunk.OriginalName = "harvest.mp4"
			chunk.TotalSize = int64(len(payload))
		}
		result = append(result, chunk)
	}
	return result
}

func TestReceiveChunk(t *testing.T) {
	payload := []byte("0123456789abcdefghij-video-payload")

	t.Run(`all chunks create pending video`, func(t *testing.T) {
		env := newTestEnv()
		parts := chunks("s-1", payload, 10)
		var ack *videoapimodels.ChunkAck
		for _, part := range parts {
			var err error
			ack, err = env.handler.ReceiveChunk(context.Background(), farmer, part)
			require.Nil(t, err)
		}
		require.Equal(t, models.UploadStatusCompleted, ack.Status)
		require.NotEmpty(t, ack.VideoID)
		require.Equal(t, []string{ack.VideoID}, env.notifier.submitted)

		video := env.sessions.videos[ack.VideoID]
		require.Equal(t, models.StatusPending, video.Status)
		require.Equal(t, "farmer-1", video.OwnerID)
		require.Equal(t, "Наш урожай", video.Title)
		require.Equal(t, int64(len(payload)), video.Size)

		reader, _, err := env.handler.OpenVideo(context.Background(), admin, ack.VideoID)
		require.Nil(t, err)
		data, _ := io.ReadAll(reader)
		require.Equal(t, payload, data)
	})

	t.Run(`retried chunk leaves single record`, func(t *testing.T) {
		env := newTestEnv()
		parts := chunks("s-1", payload, 10)
		for attempt := 0; attempt < 3; attempt++ {
			ack, err := env.handler.ReceiveChunk(context.Background(), farmer, parts[0])
			require.Nil(t, err)
			require.Equal(t, int64(1), ack.ReceivedChunks)
		}
		require.Len(t, env.sessions.chunks["s-1"], 1)
		require.Len(t, env.sessions.sessions, 1)
	})

	t.Run(`chunk after completion is acknowledged`, func(t *testing.T) {
		env := newTestEnv()
		parts := chunks("s-1", payload, 100)
		first, err := env.handler.ReceiveChunk(context.Background(), farmer, parts[0])
		require.Nil(t, err)
		again, err := env.handler.ReceiveChunk(context.Background(), farmer, parts[0])
		require.Nil(t, err)
		require.Equal(t, first.VideoID, again.VideoID)
		require.Len(t, env.sessions.videos, 1)
	})

	t.Run(`failed video record keeps chunks for retry`, func(t *testing.T) {
		env := newTestEnv()
		parts := chunks("s-1", payload, 10)
		last := parts[len(parts)-1]
		for _, part := range parts[:len(parts)-1] {
			_, err := env.handler.ReceiveChunk(context.Background(), farmer, part)
			require.Nil(t, err)
		}

		env.entities.err = errors.New("connection reset")
		_, err := env.handler.ReceiveChunk(context.Background(), farmer, last)
		require.NotNil(t, err)
		require.Equal(t, models.UploadStatusUploading, env.sessions.sessions["s-1"].Status)
		require.Equal(t, len(parts), env.storage.chunkCount("s-1"))
		require.Empty(t, env.notifier.submitted)

		env.entities.err = nil
		ack, err := env.handler.ReceiveChunk(context.Background(), farmer, last)
		require.Nil(t, err)
		require.Equal(t, models.UploadStatusCompleted, ack.Status)
		require.Equal(t, 0, env.storage.chunkCount("s-1"))

		reader, _, err := env.handler.OpenVideo(context.Background(), admin, ack.VideoID)
		require.Nil(t, err)
		data, _ := io.ReadAll(reader)
		require.Equal(t, payload, data)
	})

	t.Run(`chunk without session`, func(t *testing.T) {
		env := newTestEnv()
		parts := chunks("s-1", payload, 10)
		_, err := env.handler.ReceiveChunk(context.Background(), farmer, parts[1])
		var notFound apperrors.NotFoundError
		require.True(t, errors.As(err, &notFound))
		require.Equal(t, 0, env.storage.puts)
	})

	t.Run(`foreign session and total mismatch`, func(t *testing.T) {
		env := newTestEnv()
		parts := chunks("s-1", payload, 10)
		_, err := env.handler.ReceiveChunk(context.Background(), farmer, parts[0])
		require.Nil(t, err)

		_, err = env.handler.ReceiveChunk(context.Background(), stranger, parts[1])
		var notFound apperrors.NotFoundError
		require.True(t, errors.As(err, &notFound))

		wrong := parts[1]
		wrong.TotalChunks = 7
		_, err = env.handler.ReceiveChunk(context.Background(), farmer, wrong)
		require.NotNil(t, err)
	})

	t.Run(`role without video submit`, func(t *testing.T) {
		env := newTestEnv()
		customer := models.Principal{UserID: "c-1", Role: models.UserRoleCustomer}
		_, err := env.handler.ReceiveChunk(context.Background(), customer, chunks("s-1", payload, 10)[0])
		var unauthorized apperrors.UnauthorizedError
		require.True(t, errors.As(err, &unauthorized))
	})
}

func TestFailSession(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 50)

	t.Run(`failed session keeps chunk index and rejects chunks`, func(t *testing.T) {
		env := newTestEnv()
		parts := chunks("s-1", payload, 10)
		for _, part := range parts[:2] {
			_, err := env.handler.ReceiveChunk(context.Background(), farmer, part)
			require.Nil(t, err)
		}
		view, err := env.handler.FailSession(context.Background(), farmer, "s-1", videoapimodels.FailRequest{ChunkIndex: 2, Reason: "timeout"})
		require.Nil(t, err)
		require.Equal(t, models.UploadStatusFailed, view.Status)
		require.Equal(t, 2, *view.FailedChunkIndex)
		require.Equal(t, int64(2), view.ReceivedChunks)

		_, err = env.handler.ReceiveChunk(context.Background(), farmer, parts[2])
		var stateErr apperrors.UploadSessionStateError
		require.True(t, errors.As(err, &stateErr))
		require.Empty(t, env.sessions.videos)
	})

	t.Run(`unknown session`, func(t *testing.T) {
		env := newTestEnv()
		_, err := env.handler.FailSession(context.Background(), farmer, "missing", videoapimodels.FailRequest{ChunkIndex: 0})
		var notFound apperrors.NotFoundError
		require.True(t, errors.As(err, &notFound))
	})
}

func TestExpireStale(t *testing.T) {
	env := newTestEnv()
	_, err := env.handler.ReceiveChunk(context.Background(), farmer, chunks("old", []byte("0123456789abc"), 10)[0])
	require.Nil(t, err)
	env.now = env.now.Add(2 * time.Hour)
	_, err = env.handler.ReceiveChunk(context.Background(), farmer, chunks("fresh", []byte("0123456789abc"), 10)[0])
	require.Nil(t, err)

	expired, err := env.handler.ExpireStale(context.Background(), time.Hour)
	require.Nil(t, err)
	require.Equal(t, 1, expired)
	require.Equal(t, models.UploadStatusExpired, env.sessions.sessions["old"].Status)
	require.Equal(t, models.UploadStatusUploading, env.sessions.sessions["fresh"].Status)
	require.Empty(t, env.sessions.chunks["old"])
	_, ok := env.storage.objects["chunks/old/000000"]
	require.False(t, ok)
}

func TestOpenVideo(t *testing.T) {
	env := newTestEnv()
	env.sessions.videos["v-1"] = dbmodels.Video{
		ApprovableModel: dbmodels.ApprovableModel{BaseModel: dbmodels.BaseModel{ID: "v-1"}, OwnerID: "farmer-1"},
		ObjectKey:       "videos/s-1",
	}
	_, _, err := env.handler.OpenVideo(context.Background(), stranger, "v-1")
	var unauthorized apperrors.UnauthorizedError
	require.True(t, errors.As(err, &unauthorized))

	_, video, err := env.handler.OpenVideo(context.Background(), farmer, "v-1")
	require.Nil(t, err)
	require.Equal(t, "videos/s-1", video.ObjectKey)
}
