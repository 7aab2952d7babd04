package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/auth/domain"
	"portfolio_backend/internal/feature/auth/domain/entity"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type admitFunc func(ctx context.Context, path string, header http.Header) (*entity.User, error)

func (f admitFunc) Admit(ctx context.Context, path string, header http.Header) (*entity.User, error) {
	return f(ctx, path, header)
}

func newRouter(gate Admitter) *gin.Engine {
	r := gin.New()
	r.Use(APIKeyGate(gate))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/portfolio/balance", RequirePrincipal(), func(c *gin.Context) {
		u, _ := Principal(c)
		c.JSON(http.StatusOK, gin.H{"email": u.Email})
	})
	return r
}

func TestAPIKeyGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		gate       admitFunc
		wantStatus int
		wantBody   string
	}{
		{
			name: "excluded path",
			path: "/healthz",
			gate: func(context.Context, string, http.Header) (*entity.User, error) {
				return nil, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "admitted principal",
			path: "/portfolio/balance",
			gate: func(_ context.Context, _ string, h http.Header) (*entity.User, error) {
				return &entity.User{Email: "a@example.com"}, nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"email":"a@example.com"}`,
		},
		{
			name: "missing key",
			path: "/portfolio/balance",
			gate: func(context.Context, string, http.Header) (*entity.User, error) {
				return nil, domain.ErrKeyNotProvided
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"API Key not provided"}`,
		},
		{
			name: "invalid key",
			path: "/portfolio/balance",
			gate: func(context.Context, string, http.Header) (*entity.User, error) {
				return nil, domain.ErrInvalidKey
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Invalid key"}`,
		},
		{
			name: "rate limited",
			path: "/portfolio/balance",
			gate: func(context.Context, string, http.Header) (*entity.User, error) {
				return nil, domain.ErrRateLimited
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Rate limit reached"}`,
		},
		{
			name: "dependency failure",
			path: "/portfolio/balance",
			gate: func(context.Context, string, http.Header) (*entity.User, error) {
				return nil, fmt.Errorf("scan: %w", api.Dependency(api.KindStorage, errors.New("down")))
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"error":"dependency failure","kind":"storage"}`,
		},
		{
			name: "excluded path without principal cannot reach protected handler",
			path: "/portfolio/balance",
			gate: func(context.Context, string, http.Header) (*entity.User, error) {
				return nil, nil
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newRouter(tt.gate)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestPrincipal_Missing(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	u, ok := Principal(c)

	assert.False(t, ok)
	assert.Nil(t, u)
}

func TestAPIKeyGate_PassesPathAndHeader(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	r := newRouter(admitFunc(func(_ context.Context, path string, h http.Header) (*entity.User, error) {
		gotPath, gotKey = path, h.Get("X-API-Key")
		return &entity.User{Email: "a@example.com"}, nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/portfolio/balance?x=1", nil)
	req.Header.Set("X-API-Key", "pf_abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/portfolio/balance", gotPath)
	assert.Equal(t, "pf_abc", gotKey)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "a@example.com", body["email"])
}
