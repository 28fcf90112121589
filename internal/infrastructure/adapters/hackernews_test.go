package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsDigest/internal/config"
	"NewsDigest/internal/infrastructure/httpclient"
)

func testClient(t *testing.T) *httpclient.Client {
	t.Helper()
	c := httpclient.New(httpclient.Config{Retries: 0})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestHackerNewsFetch(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[1,2,3,4,5]`)
	})
	mux.HandleFunc("/item/1.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":1,"type":"story","title":"Go 1.25","url":"https://go.dev/blog","score":321,"time":1714550400}`)
	})
	mux.HandleFunc("/item/2.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":2,"type":"job","title":"Hiring"}`)
	})
	mux.HandleFunc("/item/3.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":3,"type":"story","title":"Ask HN: tools?","text":"<p>What do you <i>use</i>?</p>","score":12}`)
	})
	mux.HandleFunc("/item/4.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("/item/5.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `null`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	hn := NewHackerNews(config.AdapterConfig{
		Name:     "hn",
		MaxItems: 5,
		Options:  map[string]string{"endpoint": srv.URL},
	}, testClient(t), nil)

	items, err := hn.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 stories, got %d: %+v", len(items), items)
	}
	first := items[0]
	if first.Source != "Hacker News" || first.Score != 321 || first.URL != "https://go.dev/blog" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if first.PublishedAt == nil || first.PublishedAt.Unix() != 1714550400 {
		t.Fatalf("timestamp not parsed: %v", first.PublishedAt)
	}
	second := items[1]
	if second.URL != "https://news.ycombinator.com/item?id=3" {
		t.Fatalf("discussion fallback url = %q", second.URL)
	}
	if second.Summary != "What do you use?" {
		t.Fatalf("summary = %q", second.Summary)
	}
	if second.PublishedAt != nil {
		t.Fatalf("missing time should stay unknown")
	}
}

func TestHackerNewsLimit(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[1,2,3]`)
	})
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"story","title":"t","url":"https://x/`+r.URL.Path+`"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	hn := NewHackerNews(config.AdapterConfig{Name: "hn", MaxItems: 1, Options: map[string]string{"endpoint": srv.URL}}, testClient(t), nil)
	items, err := hn.Fetch(context.Background())
	if err != nil || len(items) != 1 {
		t.Fatalf("items=%d err=%v", len(items), err)
	}
}

func TestHackerNewsTopStoriesFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	hn := NewHackerNews(config.AdapterConfig{Name: "hn", Options: map[string]string{"endpoint": srv.URL}}, testClient(t), nil)
	if _, err := hn.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error when the story list is unavailable")
	}
}
