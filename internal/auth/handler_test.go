package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokehub/pkg/apperr"
	"pokehub/pkg/database"
	"pokehub/pkg/logging"
)

type testEnv struct {
	router *gin.Engine
	repo   *Repo
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenAndMigrate(database.Config{Path: filepath.Join(t.TempDir(), "auth.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepo(db)
	h := NewHandler(repo, testTokens(), logging.Discard())

	r := gin.New()
	h.RegisterRoutes(r.Group("/auth"))
	return testEnv{router: r, repo: repo}
}

func (e testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (e testEnv) register(t *testing.T, username, email, password string) string {
	t.Helper()
	w, body := e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return body["access_token"].(string)
}

func TestRegisterLoginProfile(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ash", "Ash@Example.com", "pikachu123")

	w, body := env.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "ash", "password": "pikachu123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	assert.InDelta(t, 3600, body["expires_in"], 2)

	w, body = env.do(t, http.MethodGet, "/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ash", body["username"])
	assert.Equal(t, "ash@example.com", body["email"])
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"short username", gin.H{"username": "ab", "email": "a@b.c", "password": "longenough"}},
		{"bad email", gin.H{"username": "misty", "email": "nope", "password": "longenough"}},
		{"short password", gin.H{"username": "misty", "email": "m@b.c", "password": "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := env.do(t, http.MethodPost, "/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "brock", "brock@example.com", "onix12345")

	w, _ := env.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": "brock", "email": "other@example.com", "password": "onix12345",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = env.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": "brock2", "email": "BROCK@example.com", "password": "onix12345",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateUserConflictMapsToErrConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.repo.CreateUser(ctx, User{ID: "1", Username: "gary", Email: "g@x.io", PasswordHash: "h"}))
	err := env.repo.CreateUser(ctx, User{ID: "2", Username: "gary", Email: "g2@x.io", PasswordHash: "h"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "misty", "misty@example.com", "staryu123")

	w, _ := env.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "misty", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "nobody", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "misty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ash", "ash@example.com", "pikachu123")

	w, _ := env.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodGet, "/auth/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ash", "ash@example.com", "pikachu123")

	w, _ := env.do(t, http.MethodPost, "/auth/change-password", token, gin.H{
		"old_password": "wrong-one", "new_password": "raichu1234",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodPost, "/auth/change-password", token, gin.H{
		"old_password": "pikachu123", "new_password": "raichu1234",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = env.do(t, http.MethodGet, "/auth/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "ash", "password": "raichu1234"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddlewareRejectsMissingOrBadToken(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, http.MethodGet, "/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodGet, "/auth/profile", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// valid signature, but the user does not exist
	tok, _, err := testTokens().Sign(&User{ID: "ghost"})
	require.NoError(t, err)
	w, _ = env.do(t, http.MethodGet, "/auth/profile", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
