package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetai-dev/meetai-backend/internal/domain/entities"
	"github.com/meetai-dev/meetai-backend/pkg/jwt"
	pkgvalidator "github.com/meetai-dev/meetai-backend/pkg/validator"
)

type stubUserRepo struct {
	users map[uuid.UUID]*entities.User
}

func (r *stubUserRepo) Create(_ context.Context, u *entities.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	return r.users[id], nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entities.User, error) {
	var out []*entities.User
	for _, id := range ids {
		if u := r.users[id]; u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, _ *entities.User) error { return nil }

func newAuthFixture() (*Auth, *jwt.Manager, *entities.User) {
	user := &entities.User{
		ID:       uuid.New(),
		Email:    "ada@example.com",
		Name:     "Ada",
		IsActive: true,
	}
	manager := jwt.NewManager("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
	userRepo := &stubUserRepo{users: map[uuid.UUID]*entities.User{user.ID: user}}
	return NewAuth(manager, userRepo, zap.NewNop()), manager, user
}

func postRefresh(t *testing.T, h *Auth, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = pkgvalidator.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = h.Refresh(c)
	return rec
}

func TestRefresh_RotatesPair(t *testing.T) {
	h, manager, user := newAuthFixture()

	refreshToken, err := manager.GenerateRefreshToken(user.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rec := postRefresh(t, h, `{"refresh_token":"`+refreshToken+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken == "" || envelope.Data.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}

	claims, err := manager.ValidateAccessToken(envelope.Data.AccessToken)
	if err != nil {
		t.Fatalf("issued access token must validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := manager.ValidateRefreshToken(envelope.Data.RefreshToken); err != nil {
		t.Fatalf("issued refresh token must validate: %v", err)
	}
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	h, manager, user := newAuthFixture()

	// Access tokens are signed with a different secret and must not pass.
	accessToken, err := manager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	rec := postRefresh(t, h, `{"refresh_token":"`+accessToken+`"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRefresh_UnknownUser(t *testing.T) {
	h, manager, _ := newAuthFixture()

	refreshToken, err := manager.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rec := postRefresh(t, h, `{"refresh_token":"`+refreshToken+`"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRefresh_MissingToken(t *testing.T) {
	h, _, _ := newAuthFixture()

	rec := postRefresh(t, h, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
