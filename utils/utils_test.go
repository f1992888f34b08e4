package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("s3cret", "user-7", "Mina", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims.Subject)
	assert.Equal(t, "Mina", claims.Name)

	_, err = ParseToken("wrong", tok)
	assert.Error(t, err)

	_, err = GenerateToken("", "user-7", "", time.Hour)
	assert.Error(t, err)

	empty, err := GenerateToken("s3cret", "", "", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", empty)
	assert.Error(t, err, "tokens without subject are rejected")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "<b>hi</b>", Sanitize(`<b onclick="x()">hi</b><script>alert(1)</script>`))
	assert.Equal(t, "hi & bye", PlainText("  <i>hi</i> & bye "))
	assert.Equal(t, "", PlainText("<script>alert(1)</script>"))
}

func TestCacheIsNilSafe(t *testing.T) {
	var c *Cache
	assert.False(t, c.Enabled())
	c.SetJSON("k", map[string]int{"a": 1}, time.Minute)
	var out map[string]int
	assert.False(t, c.GetJSON("k", &out))
	c.InvalidateByPrefix("k")

	disabled := NewCache(nil)
	assert.False(t, disabled.Enabled())
	_, ok := disabled.GetBytes("k")
	assert.False(t, ok)
}

func TestResponseEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ok", func(c *gin.Context) { Success(c, gin.H{"n": 1}) })
	r.POST("/new", func(c *gin.Context) { Created(c, gin.H{"id": "x"}) })
	r.GET("/bad", func(c *gin.Context) { Error(c, http.StatusBadRequest, 40020, "invalid payload") })
	r.GET("/panic", Recovery(Logger), func(c *gin.Context) { panic("boom") })

	decode := func(w *httptest.ResponseRecorder) JSONResponse {
		var resp JSONResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode(w).Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/new", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(w)
	assert.Equal(t, 40020, resp.Code)
	assert.Nil(t, resp.Data)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 50000, decode(w).Code)
}
