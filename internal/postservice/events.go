package postservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sushihentaime/postboard/internal/common"
	"github.com/sushihentaime/postboard/internal/userservice"
)

// PostEvent is the message body published on the post exchange.
type PostEvent struct {
	PostID        int       `json:"post_id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	OwnerID       int       `json:"owner_id"`
	OwnerUsername string    `json:"owner_username"`
	OwnerEmail    string    `json:"owner_email"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// publish is best effort: the post is already persisted, so a broker failure is logged
// and not returned.
func (s *PostService) publish(ctx context.Context, key common.BindingKey, post *Post, requester *userservice.User) {
	if s.mb == nil {
		return
	}

	body, err := json.Marshal(PostEvent{
		PostID:        post.ID,
		Slug:          post.Slug,
		Title:         post.Title,
		OwnerID:       requester.ID,
		OwnerUsername: requester.Username,
		OwnerEmail:    requester.Email,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("could not encode post event", slog.String("key", string(key)), slog.String("error", err.Error()))
		return
	}

	err = s.mb.Publish(ctx, body, key, common.PostExchange)
	if err != nil {
		s.logger.Error("could not publish post event", slog.String("key", string(key)), slog.String("slug", post.Slug), slog.String("error", err.Error()))
	}
}
