package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookmarks/internal/auth"

	"github.com/gin-gonic/gin"
)

type mockFinder struct {
	getFunc func(ctx context.Context, userID string) (*auth.User, error)
}

func (m *mockFinder) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	return m.getFunc(ctx, userID)
}

type stubAuthorizer struct{}

func (stubAuthorizer) Authorize(ctx context.Context, accessToken string) (*auth.Principal, error) {
	if accessToken != "good" {
		return nil, auth.ErrUnauthorized
	}
	return &auth.Principal{UserID: "user-1", Email: "test@gmail.com", SessionID: "sid"}, nil
}

func newRouter(f Finder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/users/me", auth.BearerAuthMiddleware(stubAuthorizer{}, nil), NewHandler(f, nil).GetMe)
	return r
}

func getMe(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetMe_OK(t *testing.T) {
	r := newRouter(&mockFinder{getFunc: func(ctx context.Context, userID string) (*auth.User, error) {
		return &auth.User{ID: userID, Email: "test@gmail.com", PasswordHash: "secret-hash"}, nil
	}})

	w := getMe(r, "Bearer good")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["id"] != "user-1" || resp["email"] != "test@gmail.com" {
		t.Errorf("Unexpected user payload: %v", resp)
	}
	if _, ok := resp["password_hash"]; ok {
		t.Error("Password hash must not be serialized")
	}
}

func TestGetMe_NoAuthHeader(t *testing.T) {
	r := newRouter(&mockFinder{getFunc: func(ctx context.Context, userID string) (*auth.User, error) {
		t.Fatal("finder must not be called without authentication")
		return nil, nil
	}})

	if w := getMe(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
	if w := getMe(r, "Bearer bad"); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for rejected token, got %d", w.Code)
	}
}

func TestGetMe_UserGone(t *testing.T) {
	r := newRouter(&mockFinder{getFunc: func(ctx context.Context, userID string) (*auth.User, error) {
		return nil, auth.ErrUserNotFound
	}})

	if w := getMe(r, "Bearer good"); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetMe_StoreFailure(t *testing.T) {
	r := newRouter(&mockFinder{getFunc: func(ctx context.Context, userID string) (*auth.User, error) {
		return nil, errors.New("connection refused")
	}})

	if w := getMe(r, "Bearer good"); w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}
