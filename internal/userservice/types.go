package userservice

import (
	"database/sql"
	"time"

	"github.com/sushihentaime/postboard/internal/common"
)

const (
	AccessTokenTime time.Duration = 7 * 24 * time.Hour

	// tokenLength is the base32 length of 16 random bytes without padding.
	tokenLength = 26
)

// AnonymousUser is the identity attached to requests without an Authorization header.
var AnonymousUser = User{}

type UserService struct {
	m *UserModel
	c *common.Cache
}

type UserModel struct {
	db *sql.DB
}

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	Version   int       `json:"-"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte
}

// AuthToken is a bearer access token. Only the SHA-256 hash is persisted.
type AuthToken struct {
	Plain  string    `json:"access_token"`
	Hash   []byte    `json:"-"`
	UserID int       `json:"user_id"`
	Expiry time.Time `json:"access_token_expiry"`
}
