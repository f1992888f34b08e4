package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/store"
)

func TestFindCoach(t *testing.T) {
	c, ok := FindCoach("minsoo")
	require.True(t, ok)
	assert.Equal(t, "Minsoo", c.Name)
	_, ok = FindCoach("nobody")
	assert.False(t, ok)
	assert.Len(t, Coaches(), 3)
}

func TestReplyFallsBackWhenUnconfigured(t *testing.T) {
	svc := NewCoachService(store.NewMemoryLetterStore(), NewChatResponder("http://127.0.0.1:1", "", "gpt-4", time.Second), 7)
	luna, _ := FindCoach("luna")

	reply, err := svc.Reply(context.Background(), "", "Rough week", "Work has been overwhelming.")
	require.NoError(t, err)
	assert.Contains(t, luna.canned, reply)
}

func TestReplyFallsBackOnProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewCoachService(store.NewMemoryLetterStore(), NewChatResponder(srv.URL, "key", "gpt-4", time.Second), 7)
	haneul, _ := FindCoach("haneul")
	reply, err := svc.Reply(context.Background(), "haneul", "Hi", "I passed my exam")
	require.NoError(t, err)
	assert.Contains(t, haneul.canned, reply)
}

func TestChatResponderSuccess(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  You are doing great.  "}}]}`))
	}))
	defer srv.Close()

	letters := store.NewMemoryLetterStore()
	svc := NewCoachService(letters, NewChatResponder(srv.URL+"/", "key", "gpt-4", time.Second), 7)
	l, err := svc.Write(context.Background(), "u1", "minsoo", "Exams", "So much to study", true)
	require.NoError(t, err)
	assert.Equal(t, "You are doing great.", l.AIResponse)
	assert.Equal(t, "minsoo", l.CoachID)
	assert.True(t, l.IsPrivate)

	assert.Equal(t, "gpt-4", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "Minsoo")
	assert.Contains(t, got.Messages[1].Content, "So much to study")
	assert.Equal(t, 500, got.MaxTokens)
}

func TestCannedRepliesAreDeterministicForSeed(t *testing.T) {
	a := NewCoachService(store.NewMemoryLetterStore(), nil, 42)
	b := NewCoachService(store.NewMemoryLetterStore(), nil, 42)
	for i := 0; i < 5; i++ {
		ra, err := a.Reply(context.Background(), "luna", "t", "c")
		require.NoError(t, err)
		rb, err := b.Reply(context.Background(), "luna", "t", "c")
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestLettersOwnership(t *testing.T) {
	svc := NewCoachService(store.NewMemoryLetterStore(), nil, 1)
	ctx := context.Background()

	l, err := svc.Write(ctx, "u1", "", "Hello", "First letter", true)
	require.NoError(t, err)
	assert.Equal(t, DefaultCoachID, l.CoachID)

	mine, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, theirs)

	assert.ErrorIs(t, svc.Delete(ctx, "u2", l.ID), models.ErrNotFound)
	assert.NoError(t, svc.Delete(ctx, "u1", l.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", l.ID), models.ErrNotFound)
}

func TestLetterValidation(t *testing.T) {
	svc := NewCoachService(store.NewMemoryLetterStore(), nil, 1)
	_, err := svc.Write(context.Background(), "u1", "nobody", "t", "c", true)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.Reply(context.Background(), "luna", "", "c")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
