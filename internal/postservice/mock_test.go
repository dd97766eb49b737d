package postservice

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/sushihentaime/postboard/internal/common"
)

type MockMessageProducer struct {
	mock.Mock
}

func (m *MockMessageProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	args := m.Called(ctx, msg, key, exchange)
	return args.Error(0)
}

// racingStore lets a rival post claim the candidate slug right before the first insert,
// the way a concurrent request would.
type racingStore struct {
	*MemoryStore
	raced bool
}

func (s *racingStore) Insert(ctx context.Context, post *Post) error {
	if !s.raced {
		s.raced = true
		rival := &Post{Title: post.Title, Slug: post.Slug, Content: "rival", UserID: 99}
		if err := s.MemoryStore.Insert(ctx, rival); err != nil {
			return err
		}
	}

	return s.MemoryStore.Insert(ctx, post)
}

// collidingStore loses every slug race.
type collidingStore struct {
	*MemoryStore
	inserts int
}

func (s *collidingStore) Insert(context.Context, *Post) error {
	s.inserts++
	return ErrDuplicateSlug
}

// pausingStore holds the first GetBySlug after it has loaded the row, so a write can run
// while a detail read is still in flight.
type pausingStore struct {
	*MemoryStore
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func newPausingStore() *pausingStore {
	return &pausingStore{
		MemoryStore: NewMemoryStore(),
		loaded:      make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (s *pausingStore) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	post, err := s.MemoryStore.GetBySlug(ctx, slug)

	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.loaded)
		<-s.release
	}

	return post, err
}
