package postservice

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It enforces slug uniqueness and optimistic
// versioning under a single lock, so it can stand in for Postgres in tests and local runs.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int
	byID   map[int]Post
	bySlug map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		byID:   make(map[int]Post),
		bySlug: make(map[string]int),
	}
}

func (s *MemoryStore) Insert(_ context.Context, post *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bySlug[post.Slug]; ok {
		return ErrDuplicateSlug
	}

	now := time.Now()
	post.ID = s.nextID
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Version = 1
	s.nextID++

	stored := *post
	stored.ContentHTML = ""
	s.byID[post.ID] = stored
	s.bySlug[post.Slug] = post.ID

	return nil
}

func (s *MemoryStore) GetBySlug(_ context.Context, slug string) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySlug[slug]
	if !ok {
		return nil, ErrRecordNotFound
	}

	p := s.byID[id]
	return &p, nil
}

func (s *MemoryStore) SlugsWithBase(_ context.Context, base string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	taken := make(map[string]struct{})
	for slug := range s.bySlug {
		if slug == base || strings.HasPrefix(slug, base+"_") {
			taken[slug] = struct{}{}
		}
	}

	return taken, nil
}

func (s *MemoryStore) Update(_ context.Context, post *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[post.ID]
	if !ok || stored.Version != post.Version {
		return ErrEditConflict
	}

	stored.Title = post.Title
	stored.Content = post.Content
	stored.UpdatedAt = time.Now()
	stored.Version++
	s.byID[post.ID] = stored

	post.UpdatedAt = stored.UpdatedAt
	post.Version = stored.Version

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok || p.UserID != userID {
		return ErrRecordNotFound
	}

	delete(s.byID, id)
	delete(s.bySlug, p.Slug)

	return nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	title := strings.ToLower(f.Title)

	posts := []Post{}
	for _, p := range s.byID {
		if title != "" && !strings.Contains(strings.ToLower(p.Title), title) {
			continue
		}
		if f.UserID != 0 && p.UserID != f.UserID {
			continue
		}
		posts = append(posts, p)
	}

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})

	if f.Offset >= len(posts) {
		return []Post{}, nil
	}
	posts = posts[f.Offset:]

	if f.Limit > 0 && f.Limit < len(posts) {
		posts = posts[:f.Limit]
	}

	return posts, nil
}
