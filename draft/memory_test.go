package draft

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elementdrive/element-drive-server/metadata/models"
)

func TestMemoryStoreGetSetRemove(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	got, err := store.Get(ctx, "session1_element5")
	require.NoError(t, err)
	assert.Nil(t, got, "absent draft must read as nil, not error")

	draft := &Draft{
		ElementID:    5,
		ElementType:  models.TypeDocument,
		Payload:      []byte(`{"title":"edited"}`),
		VersionCount: 3,
	}
	require.NoError(t, store.Set(ctx, "session1_element5", draft))

	got, err = store.Get(ctx, "session1_element5")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "session1_element5", got.Key)
	assert.Equal(t, int64(5), got.ElementID)
	assert.Equal(t, []byte(`{"title":"edited"}`), got.Payload)

	require.NoError(t, store.Remove(ctx, "session1_element5"))
	got, err = store.Get(ctx, "session1_element5")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreConsumeForSaveOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	draft := &Draft{ElementID: 5, VersionCount: 3}
	require.NoError(t, store.Set(ctx, "k", draft))
	require.NoError(t, store.MarkUseForSave(ctx, "k"))

	got, use, err := store.ConsumeForSave(ctx, "k")
	require.NoError(t, err)
	assert.True(t, use, "first consume after mark must yield the draft")
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.ElementID)

	// The flag is spent; the next save falls through to the stored element.
	got, use, err = store.ConsumeForSave(ctx, "k")
	require.NoError(t, err)
	assert.False(t, use)
	assert.Nil(t, got)

	// Marking again re-arms it.
	require.NoError(t, store.MarkUseForSave(ctx, "k"))
	_, use, err = store.ConsumeForSave(ctx, "k")
	require.NoError(t, err)
	assert.True(t, use)
}

func TestMemoryStoreConsumeWithoutMark(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "k", &Draft{ElementID: 5}))

	got, use, err := store.ConsumeForSave(ctx, "k")
	require.NoError(t, err)
	assert.False(t, use)
	assert.Nil(t, got)
}

func TestMemoryStoreOrphanedFlag(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", &Draft{ElementID: 5}))
	require.NoError(t, store.MarkUseForSave(ctx, "k"))
	// The draft expires or is torn down while the flag survives.
	store.mu.Lock()
	delete(store.drafts, "k")
	store.mu.Unlock()

	got, use, err := store.ConsumeForSave(ctx, "k")
	require.NoError(t, err, "an orphaned flag must not surface as an error")
	assert.False(t, use)
	assert.Nil(t, got)
}

func TestMemoryStoreRemoveClearsFlag(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", &Draft{ElementID: 5}))
	require.NoError(t, store.MarkUseForSave(ctx, "k"))
	require.NoError(t, store.Remove(ctx, "k"))

	// Re-created draft under the same key does not inherit the old flag.
	require.NoError(t, store.Set(ctx, "k", &Draft{ElementID: 5}))
	_, use, err := store.ConsumeForSave(ctx, "k")
	require.NoError(t, err)
	assert.False(t, use)
}

func TestMemoryStoreCopiesOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	original := &Draft{ElementID: 5, VersionCount: 1}
	require.NoError(t, store.Set(ctx, "k", original))
	original.VersionCount = 99

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.VersionCount, "stored draft must not alias the caller's struct")
}
