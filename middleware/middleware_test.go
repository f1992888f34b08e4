package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/store"
	"github.com/cppla/maeum/utils"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	id  services.Identity
	err error
}

func (s stubVerifier) Verify(context.Context, string) (services.Identity, error) {
	return s.id, s.err
}

func authEngine(v TokenVerifier) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(v), func(c *gin.Context) {
		id := c.MustGet(ContextIdentityKey).(services.Identity)
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserIDKey), "name": id.DisplayName})
	})
	return r
}

func doGet(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredRejections(t *testing.T) {
	r := authEngine(JWTVerifier{Secret: testSecret})

	cases := map[string]struct {
		header string
		code   string
	}{
		"missing":      {"", `"code":40101`},
		"wrong scheme": {"Basic abc", `"code":40102`},
		"empty token":  {"Bearer   ", `"code":40103`},
		"bad token":    {"Bearer not-a-jwt", `"code":40105`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := doGet(r, "/me", tc.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tc.code)
		})
	}
}

func TestAuthRequiredAcceptsJWT(t *testing.T) {
	r := authEngine(JWTVerifier{Secret: testSecret})
	tok, err := utils.GenerateToken(testSecret, "user-1", "Mina", time.Hour)
	require.NoError(t, err)

	w := doGet(r, "/me", "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
	assert.Contains(t, w.Body.String(), `"name":"Mina"`)

	other, err := utils.GenerateToken("other-secret", "user-1", "Mina", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", "Bearer "+other).Code)

	expired, err := utils.GenerateToken(testSecret, "user-1", "Mina", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", "Bearer "+expired).Code)
}

func TestAuthRequiredUsesVerifier(t *testing.T) {
	ok := authEngine(stubVerifier{id: services.Identity{UserID: "fb-uid", DisplayName: "From Firebase"}})
	w := doGet(ok, "/me", "bearer anything")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fb-uid")

	denied := authEngine(stubVerifier{err: errors.New("revoked")})
	assert.Equal(t, http.StatusUnauthorized, doGet(denied, "/me", "Bearer anything").Code)
}

func TestRateLimitPerUser(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-User"); uid != "" {
			c.Set(ContextUserIDKey, uid)
		}
		c.Next()
	})
	r.Use(RateLimitMiddleware(4))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	get := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// burst is half the per-minute allowance
	assert.Equal(t, http.StatusOK, get("a").Code)
	assert.Equal(t, http.StatusOK, get("a").Code)
	w := get("a")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"code":42901`)

	assert.Equal(t, http.StatusOK, get("b").Code, "other users have their own bucket")
}

func TestRateLimitInstancesAreIndependent(t *testing.T) {
	first := RateLimitMiddleware(2)
	second := RateLimitMiddleware(2)

	r := gin.New()
	r.GET("/a", first, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/b", second, func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doGet(r, "/a", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "/a", "").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/b", "").Code)
}

type failingEnsurer struct{ err error }

func (f failingEnsurer) Ensure(context.Context, services.Identity) (models.UserProfile, error) {
	return models.UserProfile{}, f.err
}

func TestEnsureProfileCreatesOnFirstRequest(t *testing.T) {
	stores := store.NewMemoryStores()
	profiles := services.NewProfileService(stores.Profiles, services.FixedClockAt(models.MustDay("2024-01-01")))
	v := stubVerifier{id: services.Identity{UserID: "new-user", DisplayName: "Hana"}}

	r := gin.New()
	r.POST("/checkins", AuthRequired(v), EnsureProfile(profiles), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/checkins", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	p, err := stores.Profiles.Get(context.Background(), "new-user")
	require.NoError(t, err)
	assert.Equal(t, "Hana", p.DisplayName)
}

func TestEnsureProfileFailures(t *testing.T) {
	r := gin.New()
	r.GET("/no-auth", EnsureProfile(failingEnsurer{}), func(c *gin.Context) { c.Status(http.StatusOK) })
	down := AuthRequired(stubVerifier{id: services.Identity{UserID: "u1"}})
	r.GET("/down", down, EnsureProfile(failingEnsurer{err: models.ErrUnavailable}), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/broken", down, EnsureProfile(failingEnsurer{err: errors.New("disk on fire")}), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doGet(r, "/no-auth", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40110`)

	w = doGet(r, "/down", "Bearer x")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"code":50312`)

	w = doGet(r, "/broken", "Bearer x")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}

func TestRateLimitFloorsAtOneRequest(t *testing.T) {
	r := gin.New()
	r.GET("/z", RateLimitMiddleware(0), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doGet(r, "/z", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "/z", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	m := NewMetrics()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/metrics", m.Handler("prom", "secret"))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doGet(r, "/items/42", "").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/items/43", "").Code)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/metrics", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prom", "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/items/:id",status="200"} 2`)
	assert.True(t, strings.Contains(body, `auth_rejections_total{reason="401_unauthorized"} 1`))
}
