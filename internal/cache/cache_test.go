package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCachesResult(t *testing.T) {
	s := New(nil, nil)
	key := NewKey(ResourceProjects, 5)

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "projects", nil
	}

	data, err := s.Query(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "projects", data)

	// second query hits the cache
	data, err = s.Query(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "projects", data)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueryDisabledKey(t *testing.T) {
	s := New(nil, nil)

	data, err := s.Query(context.Background(), NewKey(ResourceTasks, 0), func(ctx context.Context) (any, error) {
		t.Fatal("fetch must not run for a disabled key")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestQuerySharesInflightFetch(t *testing.T) {
	s := New(nil, nil)
	key := NewKey(ResourceTasks, 5)

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		close(started)
		<-release
		return "tasks", nil
	}

	const goroutines = 8
	var wg sync.WaitGroup
	results := make([]any, goroutines)
	errs := make([]error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Query(context.Background(), key, fetch)
		}(i)
	}

	// wait for the first goroutine to own the flight, then release it
	<-started
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent queries must share one fetch")
	for i := 0; i < goroutines; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "tasks", results[i])
	}
}

func TestQueryRefetchesWhenInvalidatedMidFlight(t *testing.T) {
	s := New(nil, nil)
	key := TasksKey(5, "")

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return "pre-mutation page", nil
		}
		return "post-mutation page", nil
	}

	done := make(chan struct{})
	var first any
	var firstErr error
	go func() {
		defer close(done)
		first, firstErr = s.Query(context.Background(), key, fetch)
	}()

	// invalidate while the first fetch is blocked, then let it finish
	<-started
	s.Invalidate(TasksPrefix(5))
	close(release)
	<-done

	// the overtaken result must not satisfy the query
	require.NoError(t, firstErr)
	assert.Equal(t, "post-mutation page", first)
	assert.Equal(t, int32(2), calls.Load())

	// and the slot now holds the refetched state
	data, err := s.Query(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "post-mutation page", data)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSeedDuringFetchWins(t *testing.T) {
	s := New(nil, nil)
	key := TaskKey(5, 9)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Query(context.Background(), key, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "task v1", nil
		})
	}()

	// a mutation response seeds the slot while the fetch is blocked
	<-started
	s.Seed(key, "task v2")
	close(release)
	<-done

	// the direct write settled the slot; the older fetch result is dropped
	data, err := s.Query(context.Background(), key, func(ctx context.Context) (any, error) {
		t.Fatal("seeded slot must not refetch")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "task v2", data)
}

func TestQueryErrorNotCached(t *testing.T) {
	s := New(nil, nil)
	key := NewKey(ResourceProjects, 5)

	boom := errors.New("boom")
	var calls atomic.Int32
	_, err := s.Query(context.Background(), key, func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	// failed fetch leaves the slot empty; the next query retries
	data, err := s.Query(context.Background(), key, func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", data)
	assert.Equal(t, int32(2), calls.Load())
}

func TestInvalidateMarksStaleAndNotifies(t *testing.T) {
	var notified []Prefix
	s := New(func(p Prefix) { notified = append(notified, p) }, nil)

	filtered := TasksKey(5, "status=todo")
	unfiltered := TasksKey(5, "")
	other := TasksKey(6, "")

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "page", nil
	}
	for _, k := range []Key{filtered, unfiltered, other} {
		_, err := s.Query(context.Background(), k, fetch)
		require.NoError(t, err)
	}
	require.Equal(t, int32(3), calls.Load())

	s.Invalidate(TasksPrefix(5))
	require.Len(t, notified, 1)
	assert.True(t, notified[0].Matches(filtered))

	// stale entries still peek (last authoritative state stays on screen)
	data, ok := s.Peek(filtered)
	assert.True(t, ok)
	assert.Equal(t, "page", data)

	// both workspace-5 queries refetch, the other workspace does not
	for _, k := range []Key{filtered, unfiltered, other} {
		_, err := s.Query(context.Background(), k, fetch)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestSeedWritesWithoutFetch(t *testing.T) {
	s := New(nil, nil)
	key := TaskKey(5, 9)

	s.Seed(key, "task v2")

	data, err := s.Query(context.Background(), key, func(ctx context.Context) (any, error) {
		t.Fatal("seeded slot must not refetch")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "task v2", data)
}

func TestSeedOverridesStale(t *testing.T) {
	s := New(nil, nil)
	key := TaskKey(5, 9)

	_, err := s.Query(context.Background(), key, func(ctx context.Context) (any, error) {
		return "task v1", nil
	})
	require.NoError(t, err)

	s.Invalidate(TaskPrefix(5, 9))
	s.Seed(key, "task v2")

	// the seed re-validated the slot; no refetch happens
	data, err := s.Query(context.Background(), key, func(ctx context.Context) (any, error) {
		t.Fatal("seeded slot must not refetch")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "task v2", data)
}

func TestEvictDropsEntries(t *testing.T) {
	s := New(nil, nil)
	key := CommentsKey(5, 9)

	_, err := s.Query(context.Background(), key, func(ctx context.Context) (any, error) {
		return "comments", nil
	})
	require.NoError(t, err)

	s.Evict(TaskPrefix(5, 9))

	_, ok := s.Peek(key)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	s := New(nil, nil)
	_, err := s.Query(context.Background(), WorkspacesKey(), func(ctx context.Context) (any, error) {
		return "workspaces", nil
	})
	require.NoError(t, err)

	s.Clear()

	_, ok := s.Peek(WorkspacesKey())
	assert.False(t, ok)
}

func TestFetchTyped(t *testing.T) {
	s := New(nil, nil)

	got, err := Fetch(context.Background(), s, ProjectsKey(5), func(ctx context.Context) ([]string, error) {
		return []string{"alpha", "beta"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, got)

	// disabled key yields the zero value
	got, err = Fetch(context.Background(), s, ProjectsKey(0), func(ctx context.Context) ([]string, error) {
		t.Fatal("fetch must not run for a disabled key")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)
}
