package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func Test_Insert_Assigns_Increasing_Ids(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)
	ctx := context.Background()

	var lastID int64
	for i := 0; i < 10; i++ {
		msg, err := s.Insert(ctx, "alice", "hello")
		req.NoError(err)
		req.Greater(msg.ID, lastID)
		req.False(msg.CreatedAt.IsZero())
		req.Equal("UTC", msg.CreatedAt.Location().String())
		lastID = msg.ID
	}
}

func Test_Insert_Then_List_Round_Trip(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)
	ctx := context.Background()

	inserted, err := s.Insert(ctx, "alice", "this message will outlive the connection")
	req.NoError(err)

	fetched, err := s.ListRecent(ctx, 1)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal(inserted.ID, fetched[0].ID)
	req.Equal("alice", fetched[0].Username)
	req.Equal(inserted.Content, fetched[0].Content)
	req.True(inserted.CreatedAt.Equal(fetched[0].CreatedAt))
}

func Test_ListRecent_Returns_Newest_Oldest_First(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)
	ctx := context.Background()

	authors := []string{"alice", "bob", "clara", "dave", "erin"}
	for _, author := range authors {
		_, err := s.Insert(ctx, author, "hi")
		req.NoError(err)
	}

	fetched, err := s.ListRecent(ctx, 3)
	req.NoError(err)
	req.Len(fetched, 3)
	// The three newest, in ascending id order.
	req.Equal("clara", fetched[0].Username)
	req.Equal("dave", fetched[1].Username)
	req.Equal("erin", fetched[2].Username)
	req.Less(fetched[0].ID, fetched[1].ID)
	req.Less(fetched[1].ID, fetched[2].ID)
}

func Test_ListRecent_NonPositive_Limit_Falls_Back_To_Default(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < DefaultHistoryLimit+5; i++ {
		_, err := s.Insert(ctx, "alice", "hi")
		req.NoError(err)
	}

	for _, limit := range []int{0, -1} {
		fetched, err := s.ListRecent(ctx, limit)
		req.NoError(err)
		req.Len(fetched, DefaultHistoryLimit)
	}
}

func Test_ListRecent_Empty_Store(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	fetched, err := s.ListRecent(context.Background(), 10)
	req.NoError(err)
	req.Empty(fetched)
}

func Test_Ids_Survive_Reopen(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	req.NoError(err)
	first, err := s.Insert(ctx, "alice", "before restart")
	req.NoError(err)
	req.NoError(s.Close())

	s, err = Open(dir)
	req.NoError(err)
	defer func() { req.NoError(s.Close()) }()

	second, err := s.Insert(ctx, "alice", "after restart")
	req.NoError(err)
	req.Greater(second.ID, first.ID)

	fetched, err := s.ListRecent(ctx, 10)
	req.NoError(err)
	req.Len(fetched, 2)
	req.Equal("before restart", fetched[0].Content)
	req.Equal("after restart", fetched[1].Content)
}

func Test_Concurrent_Inserts_Never_Collide(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)
	ctx := context.Background()

	const workers = 8
	const perWorker = 25
	ids := make(chan int64, workers*perWorker)
	done := make(chan error, workers)
	for w := 0; w < workers; w++ {
		go func() {
			for i := 0; i < perWorker; i++ {
				msg, err := s.Insert(ctx, "alice", "racing")
				if err != nil {
					done <- err
					return
				}
				ids <- msg.ID
			}
			done <- nil
		}()
	}
	for w := 0; w < workers; w++ {
		req.NoError(<-done)
	}
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		req.False(seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	req.Len(seen, workers*perWorker)
}
