package postservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/postboard/internal/userservice"
)

func TestOwnershipGuard(t *testing.T) {
	owner := &userservice.User{ID: 1, Username: "alice"}
	post := &Post{ID: 10, UserID: owner.ID, Owner: Owner{ID: owner.ID, Username: owner.Username}}

	testCases := []struct {
		name      string
		post      *Post
		requester *userservice.User
		want      bool
	}{
		{name: "owner", post: post, requester: owner, want: true},
		{name: "same id different value", post: post, requester: &userservice.User{ID: 1}, want: true},
		{name: "other user", post: post, requester: &userservice.User{ID: 2, Username: "bob"}, want: false},
		{name: "anonymous", post: post, requester: &userservice.AnonymousUser, want: false},
		{name: "nil requester", post: post, requester: nil, want: false},
		{name: "nil post", post: nil, requester: owner, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsOwner(tc.post, tc.requester))

			err := Authorize(tc.post, tc.requester)
			if tc.want {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrPermissionDenied)
			}
		})
	}
}
