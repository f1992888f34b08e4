package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cppla/maeum/models"
	"github.com/cppla/maeum/store"
	"github.com/cppla/maeum/utils"
)

const (
	maxLetterTitleLen   = 255
	maxLetterContentLen = 5000
)

// Coach is one of the AI personas a user can write to.
type Coach struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Personality string `json:"personality"`
	Description string `json:"description"`
	prompt      string
	canned      []string
}

var coaches = []Coach{
	{
		ID:          "luna",
		Name:        "Luna",
		Personality: "Warm and empathetic",
		Description: "Listens first and helps you put feelings into words.",
		prompt: "You are Luna, a warm and empathetic wellbeing coach. Listen carefully, acknowledge the " +
			"user's feelings, offer gentle comfort and one or two practical suggestions. Keep the reply " +
			"friendly and around 200-300 characters.",
		canned: []string{
			"Thank you for sharing this with me. What you are feeling makes sense. Try to be a little gentler with yourself today and give your feelings the room they need.",
			"That sounds really hard. Simply putting it into words already takes courage. Start with something small. You are doing better than you think.",
			"I hear you. How about starting by accepting these feelings as they are? Practice being kind to yourself, the way you would be to a friend.",
		},
	},
	{
		ID:          "minsoo",
		Name:        "Minsoo",
		Personality: "Practical and structured",
		Description: "Breaks problems into small, concrete next steps.",
		prompt: "You are Minsoo, a practical wellbeing coach. Briefly acknowledge the user's situation, " +
			"then suggest two or three concrete, small next steps. Keep the reply clear and around " +
			"200-300 characters.",
		canned: []string{
			"Let's make this manageable. Write down the one thing bothering you most, then pick a ten-minute action you can do about it today.",
			"When everything feels heavy, shrink the problem. Sleep, a short walk and one finished task are a solid plan for today.",
			"Try splitting this into what you can control and what you cannot. Put your energy into the first list, one item at a time.",
		},
	},
	{
		ID:          "haneul",
		Name:        "Haneul",
		Personality: "Cheerful and encouraging",
		Description: "Celebrates small wins and keeps your spirits up.",
		prompt: "You are Haneul, a cheerful and encouraging wellbeing coach. Respond with warmth and " +
			"optimism, highlight something the user is doing well and suggest one uplifting action. " +
			"Keep the reply around 200-300 characters.",
		canned: []string{
			"You reached out, and that is already a win! Celebrate one small thing you did today, no matter how tiny.",
			"Tough days don't last forever, and you have made it through every one so far. Go get some sunlight and a glass of water!",
			"I'm cheering for you! Pick one thing that makes you smile and give yourself five minutes of it today.",
		},
	},
}

// DefaultCoachID is used when a letter does not name a coach.
const DefaultCoachID = "luna"

// Coaches lists the available personas.
func Coaches() []Coach {
	out := make([]Coach, len(coaches))
	copy(out, coaches)
	return out
}

// FindCoach looks a persona up by id.
func FindCoach(id string) (Coach, bool) {
	for _, c := range coaches {
		if c.ID == id {
			return c, true
		}
	}
	return Coach{}, false
}

// Responder produces a coach reply to a letter.
type Responder interface {
	Respond(ctx context.Context, coach Coach, title, content string) (string, error)
}

// ErrResponderDisabled is returned when no API key is configured.
var ErrResponderDisabled = errors.New("chat completion not configured")

// ChatResponder calls an OpenAI-compatible /chat/completions endpoint.
type ChatResponder struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Client      *http.Client
}

// NewChatResponder builds a responder with a per-call timeout.
func NewChatResponder(baseURL, apiKey, model string, timeout time.Duration) *ChatResponder {
	return &ChatResponder{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		Model:       model,
		Temperature: 0.7,
		MaxTokens:   500,
		Client:      &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (r *ChatResponder) Respond(ctx context.Context, coach Coach, title, content string) (string, error) {
	if r.APIKey == "" {
		return "", ErrResponderDisabled
	}
	body, err := json.Marshal(chatRequest{
		Model: r.Model,
		Messages: []chatMessage{
			{Role: "system", Content: coach.prompt},
			{Role: "user", Content: fmt.Sprintf("Title: %s\n\nContent: %s", title, content)},
		},
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+r.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", models.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: chat completion status %d: %s", models.ErrUnavailable, resp.StatusCode, string(b))
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode chat completion: %v", models.ErrUnavailable, err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty chat completion", models.ErrUnavailable)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// CoachService answers letters and keeps them. Replies never fail: provider errors
// fall back to a canned response of the chosen coach.
type CoachService struct {
	letters   store.LetterStore
	responder Responder

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCoachService(letters store.LetterStore, responder Responder, seed int64) *CoachService {
	return &CoachService{letters: letters, responder: responder, rnd: rand.New(rand.NewSource(seed))}
}

// Reply returns the coach's answer to title/content.
func (s *CoachService) Reply(ctx context.Context, coachID, title, content string) (string, error) {
	coach, title, content, err := validateLetter(coachID, title, content)
	if err != nil {
		return "", err
	}
	return s.reply(ctx, coach, title, content), nil
}

func (s *CoachService) reply(ctx context.Context, coach Coach, title, content string) string {
	if s.responder != nil {
		text, err := s.responder.Respond(ctx, coach, title, content)
		if err == nil {
			return text
		}
		if !errors.Is(err, ErrResponderDisabled) {
			utils.Sugar.Warnw("coach reply fell back to canned response", "coach", coach.ID, "error", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return coach.canned[s.rnd.Intn(len(coach.canned))]
}

// Write stores a letter together with the coach's reply.
func (s *CoachService) Write(ctx context.Context, userID, coachID, title, content string, isPrivate bool) (models.Letter, error) {
	coach, title, content, err := validateLetter(coachID, title, content)
	if err != nil {
		return models.Letter{}, err
	}
	return s.letters.Create(ctx, models.Letter{
		UserID:     userID,
		CoachID:    coach.ID,
		Title:      title,
		Content:    content,
		AIResponse: s.reply(ctx, coach, title, content),
		IsPrivate:  isPrivate,
	})
}

// List returns the user's letters newest first.
func (s *CoachService) List(ctx context.Context, userID string) ([]models.Letter, error) {
	return s.letters.List(ctx, userID)
}

// Delete removes one of the user's letters.
func (s *CoachService) Delete(ctx context.Context, userID, letterID string) error {
	return s.letters.Delete(ctx, userID, letterID)
}

func validateLetter(coachID, title, content string) (Coach, string, string, error) {
	if coachID == "" {
		coachID = DefaultCoachID
	}
	coach, ok := FindCoach(coachID)
	if !ok {
		return Coach{}, "", "", fmt.Errorf("%w: unknown coach %q", models.ErrInvalidInput, coachID)
	}
	title = utils.PlainText(title)
	content = utils.PlainText(content)
	if title == "" || content == "" {
		return Coach{}, "", "", fmt.Errorf("%w: title and content are required", models.ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxLetterTitleLen || utf8.RuneCountInString(content) > maxLetterContentLen {
		return Coach{}, "", "", fmt.Errorf("%w: letter too long", models.ErrInvalidInput)
	}
	return coach, title, content, nil
}
