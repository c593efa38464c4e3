package models

import (
	"testing"
	"time"
)

func TestCatalogSatisfies(t *testing.T) {
	t.Parallel()

	items := make([]MediaItem, 5)
	tests := []struct {
		name  string
		cat   *ChannelCatalog
		depth int
		want  bool
	}{
		{"nil catalog", nil, 3, false},
		{"exhaustive unbounded", &ChannelCatalog{Items: items, Exhaustive: true}, 0, true},
		{"exhaustive deeper than held", &ChannelCatalog{Items: items, Exhaustive: true}, 50, true},
		{"prefix covers depth", &ChannelCatalog{Items: items, Depth: 5}, 3, true},
		{"prefix equals depth", &ChannelCatalog{Items: items, Depth: 5}, 5, true},
		{"prefix too short", &ChannelCatalog{Items: items, Depth: 5}, 6, false},
		{"prefix never unbounded", &ChannelCatalog{Items: items, Depth: 5}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cat.Satisfies(tt.depth); got != tt.want {
				t.Fatalf("Satisfies(%d) = %v, want %v", tt.depth, got, tt.want)
			}
		})
	}
}

func TestCatalogHeadCopies(t *testing.T) {
	t.Parallel()

	cat := &ChannelCatalog{Items: []MediaItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}, Exhaustive: true}

	head := cat.Head(2)
	if len(head) != 2 || head[0].ID != "a" || head[1].ID != "b" {
		t.Fatalf("unexpected head %v", head)
	}
	head[0].Title = "mutated"
	if cat.Items[0].Title != "" {
		t.Fatalf("Head must return a copy")
	}

	if all := cat.Head(0); len(all) != 3 {
		t.Fatalf("Head(0) returned %d items, want 3", len(all))
	}
	if all := cat.Head(10); len(all) != 3 {
		t.Fatalf("Head(10) returned %d items, want 3", len(all))
	}
}

func TestCatalogHeadDoesNotShareTagsOrCounters(t *testing.T) {
	t.Parallel()

	views := int64(7)
	cat := &ChannelCatalog{
		Items:      []MediaItem{{ID: "a", Tags: []string{"news", "live"}, Stats: Stats{Views: &views}}},
		Exhaustive: true,
	}

	head := cat.Head(0)
	head[0].Tags[0] = "mutated"
	*head[0].Stats.Views = 100

	if cat.Items[0].Tags[0] != "news" {
		t.Errorf("cached tags changed to %q", cat.Items[0].Tags[0])
	}
	if *cat.Items[0].Stats.Views != 7 {
		t.Errorf("cached views changed to %d", *cat.Items[0].Stats.Views)
	}
	if head[0].Stats.Likes != nil {
		t.Error("unknown counters must stay unknown")
	}
}

func TestItemFromUpstream(t *testing.T) {
	t.Parallel()

	views := int64(1200)
	fetched := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	item, err := ItemFromUpstream(ItemMetadata{
		ID:          "dQw4w9WgXcQ",
		Title:       "A title",
		ChannelID:   "UC123",
		PublishedAt: "2021-03-04T05:06:07Z",
		Duration:    "PT1H2M3S",
		Views:       &views,
	}, fetched)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.Duration != time.Hour+2*time.Minute+3*time.Second {
		t.Errorf("duration = %v", item.Duration)
	}
	if item.PublishedAt.Format(time.DateOnly) != "2021-03-04" {
		t.Errorf("published = %v", item.PublishedAt)
	}
	if item.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("url = %q", item.URL)
	}
	if item.Stats.Views == nil || *item.Stats.Views != 1200 {
		t.Errorf("views = %v", item.Stats.Views)
	}
	if item.Stats.Likes != nil || item.Stats.Dislikes != nil || item.Stats.Favorites != nil {
		t.Errorf("absent counters must stay nil, got %+v", item.Stats)
	}
	if !item.FetchedAt.Equal(fetched) {
		t.Errorf("fetched at = %v", item.FetchedAt)
	}
	if got := item.String(); got != "[2021-03-04] A title" {
		t.Errorf("String() = %q", got)
	}
}

func TestItemFromUpstreamRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		meta ItemMetadata
	}{
		{"missing id", ItemMetadata{Duration: "PT1S"}},
		{"missing duration", ItemMetadata{ID: "x"}},
		{"bad duration", ItemMetadata{ID: "x", Duration: "ten minutes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ItemFromUpstream(tt.meta, time.Now()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCountRoundTrip(t *testing.T) {
	t.Parallel()

	if got := FormatCount(nil); got != "" {
		t.Fatalf("FormatCount(nil) = %q", got)
	}
	n, err := ParseCount("")
	if err != nil || n != nil {
		t.Fatalf("ParseCount(\"\") = %v, %v", n, err)
	}
	n, err = ParseCount("0")
	if err != nil || n == nil || *n != 0 {
		t.Fatalf("ParseCount(\"0\") = %v, %v", n, err)
	}
	if _, err := ParseCount("abc"); err == nil {
		t.Fatalf("expected error for non-numeric count")
	}
}
