package remote

import (
	"context"
	"testing"
	"time"

	"github.com/starford/ehwaz/internal/models"
)

// countingClient stubs the metadata read path and counts fetches.
type countingClient struct {
	Client
	fetches int
	cats    []models.Category
}

func (c *countingClient) Categories(_ context.Context) ([]models.Category, error) {
	c.fetches++
	return c.cats, nil
}

func (c *countingClient) Topics(_ context.Context) ([]models.Topic, error) {
	return []models.Topic{}, nil
}

func TestMetaCache_RefreshesOnceWithinTTL(t *testing.T) {
	stub := &countingClient{cats: []models.Category{{ID: "c1", Name: "Tech", Slug: "tech"}}}
	cache := NewMetaCache(stub, time.Minute)

	for i := 0; i < 3; i++ {
		cats, err := cache.Categories(context.Background())
		if err != nil {
			t.Fatalf("Categories: %v", err)
		}
		if len(cats) != 1 || cats[0].ID != "c1" {
			t.Fatalf("cats = %v", cats)
		}
	}
	if stub.fetches != 1 {
		t.Errorf("fetches = %d, want 1", stub.fetches)
	}
}

func TestMetaCache_InvalidateForcesRefetch(t *testing.T) {
	stub := &countingClient{}
	cache := NewMetaCache(stub, time.Minute)

	if _, err := cache.Categories(context.Background()); err != nil {
		t.Fatal(err)
	}
	cache.Invalidate()
	if _, err := cache.Categories(context.Background()); err != nil {
		t.Fatal(err)
	}
	if stub.fetches != 2 {
		t.Errorf("fetches = %d, want 2", stub.fetches)
	}
}

func TestMetaCache_ExpiredTTLRefetches(t *testing.T) {
	stub := &countingClient{}
	cache := NewMetaCache(stub, time.Nanosecond)

	_, _ = cache.Categories(context.Background())
	time.Sleep(2 * time.Nanosecond)
	_, _ = cache.Categories(context.Background())
	if stub.fetches != 2 {
		t.Errorf("fetches = %d, want 2", stub.fetches)
	}
}
