package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestMealCachePerUserPerDay(t *testing.T) {
	cache := NewMealCache()
	day := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	payload := json.RawMessage(`{"breakfast":"oats"}`)

	if _, ok := cache.Get(1, day); ok {
		t.Fatal("expected empty cache")
	}
	cache.Set(1, day, payload)

	if got, ok := cache.Get(1, day.Add(10*time.Hour)); !ok || string(got) != string(payload) {
		t.Fatalf("same app day lookup failed: %s ok=%t", got, ok)
	}
	if _, ok := cache.Get(2, day); ok {
		t.Fatal("cache leaked across users")
	}
	if _, ok := cache.Get(1, day.AddDate(0, 0, 1)); ok {
		t.Fatal("cache leaked across days")
	}
}

func TestMealCacheEvictsPreviousDays(t *testing.T) {
	cache := NewMealCache()
	day1 := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	cache.Set(1, day1, json.RawMessage(`{}`))
	cache.Set(2, day2, json.RawMessage(`{}`))

	if _, ok := cache.Get(1, day1); ok {
		t.Fatal("previous-day entry should have been evicted")
	}
	if _, ok := cache.Get(2, day2); !ok {
		t.Fatal("current-day entry missing")
	}
}

func TestNilLLMClient(t *testing.T) {
	var c *LLMClient
	if _, err := c.AnalyzeWorkout(context.Background(), "ran 5k"); err != ErrLLMUnavailable {
		t.Fatalf("err=%v, want ErrLLMUnavailable", err)
	}
	if NewLLMClient("", "key", "") != nil {
		t.Fatal("client without base URL should be nil")
	}
	if NewLLMClient("https://api.example.com/v1", "", "") != nil {
		t.Fatal("client without api key should be nil")
	}
}
