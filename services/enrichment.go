package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/crewfit/fitcircle/models"
)

// WorkoutAnalyzer turns a free-text workout log into a structured JSON
// payload. It is an auxiliary collaborator: it never runs on the
// scoring path, its failures are logged and swallowed, and a check-in
// is complete before it is ever invoked.
type WorkoutAnalyzer interface {
	AnalyzeWorkout(ctx context.Context, workoutLog string) (json.RawMessage, error)
}

// MealSuggester produces a meal suggestion payload from recent habit
// history. Same best-effort contract as WorkoutAnalyzer.
type MealSuggester interface {
	SuggestMeals(ctx context.Context, recent []models.CheckIn) (json.RawMessage, error)
}

// ErrLLMUnavailable is returned when no LLM endpoint is configured.
var ErrLLMUnavailable = errors.New("llm client not configured")

// LLMClient calls an OpenAI-compatible chat completion endpoint in
// JSON mode. A nil client is valid and reports ErrLLMUnavailable.
type LLMClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewLLMClient builds an LLMClient, or nil when baseURL or apiKey is
// empty so callers can skip enrichment entirely.
func NewLLMClient(baseURL, apiKey, model string) *LLMClient {
	if baseURL == "" || apiKey == "" {
		return nil
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &LLMClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

const workoutPrompt = "You are a fitness assistant. Extract a structured summary from the workout log below. " +
	"Respond with a single JSON object: {\"activity\": string, \"duration_minutes\": number|null, " +
	"\"intensity\": \"low\"|\"moderate\"|\"high\"|null, \"calories_estimate\": number|null, \"summary\": string}."

const mealPrompt = "You are a nutrition coach for a 12-week fitness challenge. Based on the participant's recent " +
	"habit check-ins, suggest three simple meals for tomorrow. Respond with a single JSON object: " +
	"{\"breakfast\": string, \"lunch\": string, \"dinner\": string, \"note\": string}."

// AnalyzeWorkout implements WorkoutAnalyzer.
func (c *LLMClient) AnalyzeWorkout(ctx context.Context, workoutLog string) (json.RawMessage, error) {
	if c == nil {
		return nil, ErrLLMUnavailable
	}
	return c.completeJSON(ctx, workoutPrompt, workoutLog)
}

// SuggestMeals implements MealSuggester.
func (c *LLMClient) SuggestMeals(ctx context.Context, recent []models.CheckIn) (json.RawMessage, error) {
	if c == nil {
		return nil, ErrLLMUnavailable
	}
	var sb strings.Builder
	for _, ci := range recent {
		fmt.Fprintf(&sb, "%s nutrition=%t hydration=%t movement=%t\n",
			ci.Date.Format("2006-01-02"), ci.Nutrition, ci.Hydration, ci.Movement)
	}
	return c.completeJSON(ctx, mealPrompt, sb.String())
}

func (c *LLMClient) completeJSON(ctx context.Context, system, user string) (json.RawMessage, error) {
	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"response_format": map[string]string{"type": "json_object"},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm request failed: status %d", resp.StatusCode)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("llm response contained no choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if !json.Valid([]byte(content)) {
		return nil, errors.New("llm response was not valid JSON")
	}
	return json.RawMessage(content), nil
}

// MealCache is an in-memory per-user-per-day cache for meal
// suggestions. It makes no promises across process restarts; a restart
// just recomputes the suggestion once.
type MealCache struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

// NewMealCache creates an empty MealCache.
func NewMealCache() *MealCache {
	return &MealCache{entries: map[string]json.RawMessage{}}
}

func mealCacheKey(userID uint, day time.Time) string {
	return fmt.Sprintf("%d:%s", userID, AppDayKey(day).Format("2006-01-02"))
}

// Get returns the cached suggestion for the user's app day, if any.
func (m *MealCache) Get(userID uint, day time.Time) (json.RawMessage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[mealCacheKey(userID, day)]
	return v, ok
}

// Set stores a suggestion and drops entries from previous days.
func (m *MealCache) Set(userID uint, day time.Time, suggestion json.RawMessage) {
	key := mealCacheKey(userID, day)
	today := AppDayKey(day).Format("2006-01-02")
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if !strings.HasSuffix(k, today) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = suggestion
}
