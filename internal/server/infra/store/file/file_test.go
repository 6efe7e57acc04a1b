package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hitbuilder/internal/server/core/model"
	"hitbuilder/internal/server/core/repositories"
	"hitbuilder/internal/server/infra/store/memory"
)

func ExampleNewStore() {
	_, err := NewStore(&Config{})
	fmt.Println(err != nil)

	// Output:
	// true
}

func TestNewStore(t *testing.T) {
	{
		store, err := NewStore(nil)
		assert.Nil(t, store)
		assert.Error(t, err)
	}

	{
		store, err := NewStore(&Config{
			MemoryStore: &memory.Config{},
		})
		assert.Nil(t, store)
		assert.Error(t, err)
	}

	{
		path := filepath.Join(t.TempDir(), "sessions.json")
		store, err := NewStore(&Config{
			MemoryStore:   &memory.Config{},
			FilePath:      path,
			StoreInterval: time.Second,
			Restore:       true,
		})
		require.NoError(t, err)
		assert.NotNil(t, store)
		assert.NoError(t, store.Close())
	}

	{
		path := filepath.Join(t.TempDir(), "broken.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

		store, err := NewStore(&Config{FilePath: path, Restore: true})
		assert.Nil(t, store)
		assert.Error(t, err)
	}
}

func TestStore_Restore(t *testing.T) {
	path, done := testInitModule(t)
	defer done()

	ctx := context.Background()
	state := model.New("v=1&t=event&ec=video").State()

	{
		store, err := NewStore(&Config{FilePath: path})
		require.NoError(t, err)

		require.NoError(t, store.Save(ctx, "a", state))
		require.NoError(t, store.Save(ctx, "b", model.New("").State()))
		require.NoError(t, store.Delete(ctx, "b"))
		require.NoError(t, store.Close())
	}

	{
		store, err := NewStore(&Config{FilePath: path, Restore: true})
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, store.Close())
		}()

		got, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, state, got)

		_, err = store.Get(ctx, "b")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	}

	{
		store, err := NewStore(&Config{FilePath: path, Restore: false})
		require.NoError(t, err)

		_, err = store.Get(ctx, "a")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.NoError(t, store.Ping(ctx))
		assert.NoError(t, store.Close())
	}
}

func TestStore_Sync(t *testing.T) {
	path, done := testInitModule(t)
	defer done()

	store, err := NewStore(&Config{FilePath: path, StoreInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	defer func() {
		_ = store.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		store.Sync(ctx, t.Logf)
		close(finished)
	}()

	require.NoError(t, store.Save(ctx, "a", model.New("v=1").State()))

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && len(data) > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-finished
}

func TestStore_SyncWithoutInterval(t *testing.T) {
	path, done := testInitModule(t)
	defer done()

	store, err := NewStore(&Config{FilePath: path})
	require.NoError(t, err)
	defer func() {
		_ = store.Close()
	}()

	// без интервала Sync сразу возвращается
	store.Sync(context.Background(), nil)

	require.NoError(t, store.Save(context.Background(), "a", model.New("v=1").State()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sessions"`)
}

func testInitModule(t *testing.T) (string, func()) {
	t.Helper()

	path := filepath.Join(os.TempDir(), uuid.NewString()+".json")

	return path, func() {
		_ = os.Remove(path)
	}
}
