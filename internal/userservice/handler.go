package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sushihentaime/postboard/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid authentication credentials")
)

func NewUserService(db *sql.DB, c *common.Cache) *UserService {
	return &UserService{
		m: newUserModel(db),
		c: c,
	}
}

// CreateUser registers a new user account.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (*User, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Username: username,
		Email:    email,
	}

	err := u.Password.set(password)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// LoginUser checks the credentials and issues a new access token.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*AuthToken, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthenticationFailure
	}

	token, err := newAuthToken(user.ID, AccessTokenTime)
	if err != nil {
		return nil, err
	}

	err = s.m.insertAuthToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return token, nil
}

// GetUserByAccessToken resolves a bearer token to its user. Lookups are cached until
// the cache default expiry.
func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash := hashToken(token)
	key := common.CacheKeyUserByAccessToken(hash)

	if s.c != nil {
		if cached, ok := s.c.Get(key); ok {
			u := cached.(User)
			return &u, nil
		}
	}

	user, err := s.m.getUserByToken(ctx, hash)
	if err != nil {
		return nil, err
	}

	if s.c != nil {
		s.c.Set(key, *user)
	}

	return user, nil
}

// LogoutUser revokes every access token of the user.
func (s *UserService) LogoutUser(ctx context.Context, userID int) error {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	hashes, err := s.m.deleteAuthTokens(ctx, userID)
	if err != nil {
		return err
	}

	if s.c != nil {
		for _, h := range hashes {
			s.c.Delete(common.CacheKeyUserByAccessToken(h))
		}
	}

	return nil
}

func (u *User) IsAnonymous() bool {
	return u == nil || u == &AnonymousUser || u.ID == 0
}
