package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mealdiary/backend/config"
	"github.com/mealdiary/backend/internal/models"
)

var (
	// ErrUpstreamTimeout means the upstream call exceeded its deadline.
	ErrUpstreamTimeout = errors.New("upstream request timed out")

	// ErrNoRecommendation means no cached recommendation exists.
	ErrNoRecommendation = errors.New("no recommendation available")
)

// UpstreamError is a non-success response from the chat-completion API.
// The body is kept for logs only; it is never shown to the end user.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a streaming request to the chat-completion API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

// RecommendationService relays streamed meal recommendations from the
// chat-completion upstream and caches finished results in Redis.
type RecommendationService struct {
	cfg    config.AIConfig
	client *http.Client
	redis  *redis.Client
}

// Ensure RecommendationService implements IRecommendationService
var _ IRecommendationService = (*RecommendationService)(nil)

// NewRecommendationService creates a new RecommendationService. The AI
// configuration is validated once here; a missing setting fails startup
// instead of every request.
func NewRecommendationService(cfg config.AIConfig, redisClient *redis.Client) (*RecommendationService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 55 * time.Second
	}
	return &RecommendationService{
		cfg:    cfg,
		client: &http.Client{},
		redis:  redisClient,
	}, nil
}

// StreamRecommendation sends the prompt upstream with stream=true and
// forwards each decoded text delta to sink in arrival order, without
// buffering the response. It returns the accumulated text. Errors returned
// before the first sink call mean nothing was sent to the client yet; the
// caller can still reply with a structured error.
//
// ctx should be the request context so a client disconnect aborts the
// upstream read loop; the call is additionally bounded by the configured
// request timeout.
func (s *RecommendationService) StreamRecommendation(ctx context.Context, prompt string, sink func(delta string) error) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	reqBody := ChatRequest{
		Model:       s.cfg.Model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   2000,
		Stream:      true,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrUpstreamTimeout
		}
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("[Recommendation] upstream error: status=%d body=%s", resp.StatusCode, raw)
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var decoder streamDecoder
	var full strings.Builder
	buf := make([]byte, 4096)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, delta := range decoder.Feed(buf[:n]) {
				if err := sink(delta); err != nil {
					return full.String(), fmt.Errorf("failed to forward delta: %w", err)
				}
				full.WriteString(delta)
			}
		}
		if decoder.Done() {
			return full.String(), nil
		}
		if readErr != nil {
			if readErr == io.EOF {
				// Upstream closed without [DONE]; treat what we got as complete.
				return full.String(), nil
			}
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return full.String(), ErrUpstreamTimeout
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return full.String(), ctx.Err()
			}
			return full.String(), fmt.Errorf("failed to read upstream stream: %w", readErr)
		}
	}
}

func recommendationKey(userID uuid.UUID, slot models.MealType) string {
	return fmt.Sprintf("recommendation:%s:%s", userID, slot)
}

// CacheRecommendation saves a finished recommendation so the UI can
// re-show it without another model call.
func (s *RecommendationService) CacheRecommendation(ctx context.Context, userID uuid.UUID, slot models.MealType, text string) error {
	if s.redis == nil || text == "" {
		return nil
	}
	if err := s.redis.Set(ctx, recommendationKey(userID, slot), text, time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to cache recommendation: %w", err)
	}
	return nil
}

// LatestRecommendation returns the most recent cached recommendation for
// the user and slot, or ErrNoRecommendation if none is cached.
func (s *RecommendationService) LatestRecommendation(ctx context.Context, userID uuid.UUID, slot models.MealType) (string, error) {
	if s.redis == nil {
		return "", ErrNoRecommendation
	}
	text, err := s.redis.Get(ctx, recommendationKey(userID, slot)).Result()
	if err == redis.Nil {
		return "", ErrNoRecommendation
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cached recommendation: %w", err)
	}
	return text, nil
}
