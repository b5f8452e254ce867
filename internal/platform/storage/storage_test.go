package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func openTestStore(t *testing.T) *JobStore {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	return NewJobStore(db)
}

func TestJobLifecycle(t *testing.T) {
	store := openTestStore(t)

	rec := &JobRecord{
		ID:       "job-1",
		Type:     "multirole",
		ClientID: "client-a",
		Status:   "pending",
		Params:   datatypes.JSON(`{"provider":"mock"}`),
	}
	require.NoError(t, store.Create(rec))

	require.NoError(t, store.MarkStarted("job-1"))
	got, err := store.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, "running", got.Status)
	assert.NotNil(t, got.StartedAt)
	assert.Nil(t, got.FinishedAt)

	require.NoError(t, store.MarkFinished("job-1", "completed",
		datatypes.JSON(`{"duration_ms":1200}`), ""))
	got, err = store.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.NotNil(t, got.FinishedAt)
	assert.Contains(t, string(got.Result), "1200")
}

func TestJobFailureKeepsError(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Create(&JobRecord{ID: "job-2", Status: "pending", ClientID: "c"}))

	require.NoError(t, store.IncrementAttempts("job-2"))
	require.NoError(t, store.IncrementAttempts("job-2"))
	require.NoError(t, store.MarkFinished("job-2", "failed", nil, "vendor exploded"))

	got, err := store.Get("job-2")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, "vendor exploded", got.Error)
}

func TestCountActiveAndList(t *testing.T) {
	store := openTestStore(t)

	for _, rec := range []*JobRecord{
		{ID: "a1", ClientID: "a", Status: "pending"},
		{ID: "a2", ClientID: "a", Status: "running"},
		{ID: "a3", ClientID: "a", Status: "completed"},
		{ID: "b1", ClientID: "b", Status: "pending"},
	} {
		require.NoError(t, store.Create(rec))
	}

	n, err := store.CountActive("a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	recs, err := store.ListByClient("a", 10)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestGetMissingJob(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get("nope")
	assert.Error(t, err)
}

func TestFileStoreSave(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	path, err := fs.Save([]byte("RIFF....WAVE"), "audio/wav", "mock")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".wav"))
	assert.Contains(t, path, "mock_")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF....WAVE"), data)
}

func TestFileStoreRejectsEmpty(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	_, err = fs.Save(nil, "audio/wav", "mock")
	assert.Error(t, err)
}
