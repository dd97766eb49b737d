package postservice

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/sushihentaime/postboard/internal/common"
)

// Owner is the public summary of the user who created a post.
type Owner struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type Post struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	// Content is stored in Markdown format.
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html,omitempty"`
	UserID      int       `json:"user_id"`
	Owner       Owner     `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// Filter narrows a listing. Zero values mean no restriction.
type Filter struct {
	Title  string
	UserID int
	Limit  int
	Offset int
}

type CreatePostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdatePostInput holds the editable fields. Nil fields keep their stored value.
type UpdatePostInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// Store is the persistent post collection. Implementations must enforce slug uniqueness
// and report a collision on write as ErrDuplicateSlug.
type Store interface {
	Insert(ctx context.Context, post *Post) error
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	// SlugsWithBase returns every stored slug equal to base or of the form base_<suffix>.
	SlugsWithBase(ctx context.Context, base string) (map[string]struct{}, error)
	// Update writes title and content if version still matches, bumping version.
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id, userID int) error
	List(ctx context.Context, f Filter) ([]Post, error)
}

type PostModel struct {
	db *sql.DB
}

type PostService struct {
	store  Store
	c      *common.Cache
	mb     common.MessageProducer
	logger *slog.Logger

	// cacheGen is bumped on every eviction. A detail read only fills the cache if no
	// eviction happened while it was loading from the store.
	cacheMu  sync.Mutex
	cacheGen uint64
}
