package postservice

import "github.com/sushihentaime/postboard/internal/userservice"

// IsOwner reports whether requester created post. Anonymous requesters own nothing.
func IsOwner(post *Post, requester *userservice.User) bool {
	if post == nil || requester.IsAnonymous() {
		return false
	}

	return post.UserID == requester.ID
}

// Authorize is the mutation policy for posts: only the owner may update or delete.
func Authorize(post *Post, requester *userservice.User) error {
	if !IsOwner(post, requester) {
		return ErrPermissionDenied
	}

	return nil
}
