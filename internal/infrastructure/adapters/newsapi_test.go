package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsDigest/internal/config"
)

func TestNewsAPIFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		if q.Get("pageSize") != "3" || q.Get("language") != "en" || q.Get("q") != "golang" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"status":"ok","articles":[
			{"source":{"name":"Wire"},"title":"No link","url":""},
			{"source":{"name":"Wire"},"title":"[Removed]","url":"https://removed.example"},
			{"source":{"name":"The Verge"},"title":"Go wins","description":"<b>Big</b> news","url":"https://verge.example/go","publishedAt":"2024-05-01T10:00:00Z"},
			{"source":{},"title":"Anonymous","url":"https://anon.example"}
		]}`)
	}))
	defer srv.Close()

	n := NewNewsAPI(config.AdapterConfig{
		Name:        "headlines",
		MaxItems:    3,
		Query:       "golang",
		Credentials: map[string]string{"apiKey": "secret"},
		Options:     map[string]string{"endpoint": srv.URL},
	}, testClient(t), nil)

	items, err := n.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", items)
	}
	if items[0].Source != "NewsAPI (The Verge)" || items[0].Summary != "Big news" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
	if items[0].PublishedAt == nil || items[0].PublishedAt.Hour() != 10 {
		t.Fatalf("publishedAt not parsed: %v", items[0].PublishedAt)
	}
	if items[1].Source != "NewsAPI (Unknown)" {
		t.Fatalf("missing publisher label = %q", items[1].Source)
	}
}

func TestNewsAPIErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","code":"apiKeyInvalid","message":"bad key"}`)
	}))
	defer srv.Close()

	withKey := NewNewsAPI(config.AdapterConfig{
		Name:        "headlines",
		Credentials: map[string]string{"apiKey": "k"},
		Options:     map[string]string{"endpoint": srv.URL},
	}, testClient(t), nil)
	if _, err := withKey.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for non-ok status")
	}

	noKey := NewNewsAPI(config.AdapterConfig{Name: "headlines", Options: map[string]string{"endpoint": srv.URL}}, testClient(t), nil)
	if _, err := noKey.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error without api key")
	}
}
