package postservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrUserForeignKey   = errors.New("user_id does not exist")
	ErrDuplicateSlug    = errors.New("duplicate slug")
	ErrEditConflict     = errors.New("edit conflict")
	ErrPermissionDenied = errors.New("permission denied")
)

func NewPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// UniqueViolation is a helper function to check if the error is a unique constraint error.
func UniqueViolation(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// escapeLike escapes the LIKE wildcards so s matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (m *PostModel) Insert(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (title, slug, content, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at, version`

	err := m.db.QueryRowContext(ctx, query, post.Title, post.Slug, post.Content, post.UserID).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt, &post.Version)
	if err != nil {
		switch {
		case UniqueViolation(err, "posts_slug_key"):
			return ErrDuplicateSlug
		case ForeignKeyError(err, "posts_user_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

const selectPost = `
		SELECT p.id, p.title, p.slug, p.content, p.user_id, u.username, p.created_at, p.updated_at, p.version
		FROM posts p
		JOIN users u ON p.user_id = u.id`

func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.UserID, &p.Owner.Username, &p.CreatedAt, &p.UpdatedAt, &p.Version)
	if err != nil {
		return nil, err
	}
	p.Owner.ID = p.UserID

	return &p, nil
}

func (m *PostModel) getOne(ctx context.Context, where string, arg any) (*Post, error) {
	row := m.db.QueryRowContext(ctx, selectPost+"\n\t\tWHERE "+where, arg)

	post, err := scanPost(row)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return post, nil
}

func (m *PostModel) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	return m.getOne(ctx, "p.slug = $1", slug)
}

func (m *PostModel) SlugsWithBase(ctx context.Context, base string) (map[string]struct{}, error) {
	query := `
		SELECT slug
		FROM posts
		WHERE slug = $1 OR slug LIKE $2`

	rows, err := m.db.QueryContext(ctx, query, base, escapeLike(base)+`\_%`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := make(map[string]struct{})
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		taken[slug] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return taken, nil
}

// Update never touches slug or user_id.
func (m *PostModel) Update(ctx context.Context, post *Post) error {
	query := `
		UPDATE posts
		SET title = $1, content = $2, updated_at = NOW(), version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING updated_at, version`

	err := m.db.QueryRowContext(ctx, query, post.Title, post.Content, post.ID, post.Version).Scan(&post.UpdatedAt, &post.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}

	return nil
}

func (m *PostModel) Delete(ctx context.Context, id, userID int) error {
	query := `
		DELETE FROM posts
		WHERE id = $1 AND user_id = $2`

	res, err := m.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

// List returns posts newest first.
func (m *PostModel) List(ctx context.Context, f Filter) ([]Post, error) {
	query := selectPost + `
		WHERE ($1 = '' OR p.title ILIKE '%' || $1 || '%')
		AND ($2 = 0 OR p.user_id = $2)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3 OFFSET $4`

	rows, err := m.db.QueryContext(ctx, query, escapeLike(f.Title), f.UserID, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}
