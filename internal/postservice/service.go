package postservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sushihentaime/postboard/internal/common"
	"github.com/sushihentaime/postboard/internal/userservice"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100

	// maxSlugAttempts bounds how often Create re-runs the suffix search after losing a
	// slug race at write time.
	maxSlugAttempts = 8
)

var ErrSlugAttemptsExhausted = errors.New("could not assign a unique slug")

// NewPostService wires a Store with the post cache and the event producer. Both c and mb
// may be nil, which disables caching and event publishing.
func NewPostService(store Store, c *common.Cache, mb common.MessageProducer, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostService{
		store:  store,
		c:      c,
		mb:     mb,
		logger: logger,
	}
}

// CreatePost validates the input, assigns a unique slug derived from the title and
// persists the post owned by requester. A slug collision at write time re-runs the
// suffix search instead of failing.
func (s *PostService) CreatePost(ctx context.Context, requester *userservice.User, input *CreatePostInput) (*Post, error) {
	if requester.IsAnonymous() {
		return nil, ErrPermissionDenied
	}

	post := &Post{
		Title:   strings.TrimSpace(input.Title),
		Content: sanitizeMarkdown(input.Content),
		UserID:  requester.ID,
		Owner:   Owner{ID: requester.ID, Username: requester.Username},
	}

	// validate what will be stored, not what was submitted
	v := common.NewValidator()
	validateTitle(v, post.Title)
	validateContent(v, post.Content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	base := baseSlug(post.Title)

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		taken, err := s.store.SlugsWithBase(ctx, base)
		if err != nil {
			return nil, fmt.Errorf("could not read slugs: %w", err)
		}

		post.Slug = UniqueSlug(base, taken)

		err = s.store.Insert(ctx, post)
		switch {
		case err == nil:
			s.render(post)
			s.publish(ctx, common.PostCreatedKey, post, requester)
			return post, nil
		case errors.Is(err, ErrDuplicateSlug):
			s.logger.Info("slug taken at write time, retrying", slog.String("slug", post.Slug), slog.Int("attempt", attempt+1))
		default:
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: base %q after %d attempts", ErrSlugAttemptsExhausted, base, maxSlugAttempts)
}

// GetPostBySlug returns a post to any visitor, authenticated or not.
func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	if !SlugRX.MatchString(slug) {
		return nil, ErrRecordNotFound
	}

	key := common.CacheKeyPostBySlug(slug)
	if s.c != nil {
		if cached, ok := s.c.Get(key); ok {
			p := cached.(Post)
			return &p, nil
		}
	}

	gen := s.cacheGeneration()

	post, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.render(post)
	s.fill(key, *post, gen)

	return post, nil
}

// GetPostForEdit loads a post for its owner, e.g. to prefill an edit form or confirm a delete.
func (s *PostService) GetPostForEdit(ctx context.Context, requester *userservice.User, slug string) (*Post, error) {
	post, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := Authorize(post, requester); err != nil {
		return nil, err
	}

	return post, nil
}

// UpdatePost applies title and content changes for the owner. Slug and owner are never
// changed.
func (s *PostService) UpdatePost(ctx context.Context, requester *userservice.User, slug string, input *UpdatePostInput) (*Post, error) {
	post, err := s.GetPostForEdit(ctx, requester, slug)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		post.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		post.Content = sanitizeMarkdown(*input.Content)
	}

	v := common.NewValidator()
	validateTitle(v, post.Title)
	validateContent(v, post.Content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	err = s.store.Update(ctx, post)
	if err != nil {
		return nil, err
	}

	s.evict(post.Slug)
	s.render(post)
	s.publish(ctx, common.PostUpdatedKey, post, requester)

	return post, nil
}

// DeletePost removes the post for its owner.
func (s *PostService) DeletePost(ctx context.Context, requester *userservice.User, slug string) error {
	post, err := s.GetPostForEdit(ctx, requester, slug)
	if err != nil {
		return err
	}

	err = s.store.Delete(ctx, post.ID, requester.ID)
	if err != nil {
		return err
	}

	s.evict(post.Slug)
	s.publish(ctx, common.PostDeletedKey, post, requester)

	return nil
}

// ListPosts returns posts newest first, optionally filtered by a title substring.
func (s *PostService) ListPosts(ctx context.Context, title string, limit, offset int) ([]Post, error) {
	return s.list(ctx, Filter{Title: strings.TrimSpace(title), Limit: limit, Offset: offset})
}

func (s *PostService) ListPostsByUser(ctx context.Context, userID, limit, offset int) ([]Post, error) {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.list(ctx, Filter{UserID: userID, Limit: limit, Offset: offset})
}

func (s *PostService) list(ctx context.Context, f Filter) ([]Post, error) {
	if f.Limit < 1 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	posts, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		s.render(&posts[i])
	}

	return posts, nil
}

// render fills ContentHTML. A render failure leaves it empty and is logged.
func (s *PostService) render(post *Post) {
	html, err := renderMarkdown(post.Content)
	if err != nil {
		s.logger.Error("could not render post content", slog.String("slug", post.Slug), slog.String("error", err.Error()))
		return
	}
	post.ContentHTML = html
}

func (s *PostService) cacheGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	return s.cacheGen
}

// fill caches a post read at generation gen, unless a write evicted since then.
func (s *PostService) fill(key string, post Post, gen uint64) {
	if s.c == nil {
		return
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.cacheGen == gen {
		s.c.Set(key, post)
	}
}

// evict runs after a store write.
func (s *PostService) evict(slug string) {
	if s.c == nil {
		return
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cacheGen++
	s.c.Delete(common.CacheKeyPostBySlug(slug))
}
