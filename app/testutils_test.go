package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/postboard/internal/common"
	"github.com/sushihentaime/postboard/internal/postservice"
	"github.com/sushihentaime/postboard/internal/userservice"
)

// stubUserService resolves fixed bearer tokens to users.
type stubUserService struct {
	tokens map[string]*userservice.User
}

func (s *stubUserService) CreateUser(ctx context.Context, username, email, password string) (*userservice.User, error) {
	v := common.NewValidator()
	v.Check(username != "", "username", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}
	if username == "taken" {
		return nil, userservice.ErrDuplicateUsername
	}
	return &userservice.User{ID: 100, Username: username, Email: email}, nil
}

func (s *stubUserService) LoginUser(ctx context.Context, username, password string) (*userservice.AuthToken, error) {
	for token, u := range s.tokens {
		if u.Username == username && password == "Pa55word!" {
			return &userservice.AuthToken{Plain: token, UserID: u.ID, Expiry: time.Now().Add(time.Hour)}, nil
		}
	}
	return nil, userservice.ErrAuthenticationFailure
}

func (s *stubUserService) GetUserByAccessToken(ctx context.Context, token string) (*userservice.User, error) {
	u, ok := s.tokens[token]
	if !ok {
		return nil, userservice.ErrNotFound
	}
	return u, nil
}

func (s *stubUserService) LogoutUser(ctx context.Context, userID int) error {
	for token, u := range s.tokens {
		if u.ID == userID {
			delete(s.tokens, token)
		}
	}
	return nil
}

const (
	aliceToken = "AAAAAAAAAAAAAAAAAAAAAAAAAA"
	bobToken   = "BBBBBBBBBBBBBBBBBBBBBBBBBB"
)

var (
	alice = &userservice.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	bob   = &userservice.User{ID: 2, Username: "bob", Email: "bob@example.com"}
)

func strptr(s string) *string {
	return &s
}

func testConfig() *Config {
	cfg := &Config{
		Environment: "testing",
		Version:     "test",
		SigninPath:  "/v1/users/login",
	}
	return cfg
}

// newTestApplication wires the handlers to an in-memory post store and the stub
// user service.
func newTestApplication(t *testing.T) (*application, *postservice.MemoryStore) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := postservice.NewMemoryStore()

	app := &application{
		config: testConfig(),
		logger: logger,
		userService: &stubUserService{tokens: map[string]*userservice.User{
			aliceToken: alice,
			bobToken:   bob,
		}},
		postService: postservice.NewPostService(store, common.NewCache(time.Minute, time.Minute), nil, logger),
	}

	return app, store
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	// redirects are asserted, not followed
	ts.Client().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	t.Helper()
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var env envelope
	if len(responseBody) > 0 {
		require.NoError(t, json.Unmarshal(responseBody, &env), string(responseBody))
	}

	return res.StatusCode, res.Header, env
}

func (ts *testServer) do(t *testing.T, method, path, token string, payload any) (int, http.Header, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, token, nil)
}

func (ts *testServer) post(t *testing.T, path, token string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) put(t *testing.T, path, token string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPut, path, token, payload)
}

func (ts *testServer) delete(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, token, nil)
}

// seedPost creates a post through the service and returns its slug.
func seedPost(t *testing.T, app *application, owner *userservice.User, title string) string {
	t.Helper()

	p, err := app.postService.CreatePost(context.Background(), owner, &postservice.CreatePostInput{Title: title, Content: "Some *content*."})
	require.NoError(t, err)

	return p.Slug
}
