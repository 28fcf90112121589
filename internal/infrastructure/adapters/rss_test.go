package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsDigest/internal/config"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example Blog</title>
  <link>https://blog.example</link>
  <item>
    <title>First post</title>
    <link>https://blog.example/first</link>
    <description>&lt;p&gt;Hello &lt;b&gt;readers&lt;/b&gt;&lt;/p&gt;</description>
    <pubDate>Wed, 01 May 2024 09:00:00 GMT</pubDate>
    <category>go</category>
  </item>
  <item>
    <title>Second post</title>
    <link>https://blog.example/second</link>
  </item>
  <item>
    <title>Third post</title>
    <link>https://blog.example/third</link>
  </item>
</channel>
</rss>`

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom News</title>
  <entry>
    <title>Atom entry</title>
    <link href="https://atom.example/entry"/>
    <updated>2024-05-02T08:00:00Z</updated>
    <summary>Plain summary</summary>
  </entry>
</feed>`

func TestRSSFetch(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/rss.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed)
	})
	mux.HandleFunc("/atom.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, atomFeed)
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	feeds, err := NewRSS(config.AdapterConfig{
		Name:     "feeds",
		MaxItems: 2,
		URLs:     []string{srv.URL + "/rss.xml", srv.URL + "/broken.xml", srv.URL + "/atom.xml"},
	}, testClient(t), nil)
	if err != nil {
		t.Fatalf("NewRSS returned error: %v", err)
	}

	items, err := feeds.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 2 rss + 1 atom items, got %d: %+v", len(items), items)
	}
	first := items[0]
	if first.Source != "Example Blog (RSS)" || first.Summary != "Hello readers" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if first.PublishedAt == nil || len(first.Keywords) != 1 {
		t.Fatalf("time or categories missing: %+v", first)
	}
	atom := items[2]
	if atom.Source != "Atom News (RSS)" || atom.PublishedAt == nil || atom.Summary != "Plain summary" {
		t.Fatalf("unexpected atom item: %+v", atom)
	}
}

func TestRSSAllFeedsFail(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	feeds, err := NewRSS(config.AdapterConfig{Name: "feeds", URLs: []string{srv.URL + "/a", srv.URL + "/b"}}, testClient(t), nil)
	if err != nil {
		t.Fatalf("NewRSS returned error: %v", err)
	}
	if _, err := feeds.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error when every feed fails")
	}
}

func TestRSSLabelOverride(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed)
	}))
	defer srv.Close()

	feeds, err := NewRSS(config.AdapterConfig{Name: "feeds", Label: "Team Blog", URLs: []string{srv.URL}}, testClient(t), nil)
	if err != nil {
		t.Fatalf("NewRSS returned error: %v", err)
	}
	items, err := feeds.Fetch(context.Background())
	if err != nil || len(items) == 0 || items[0].Source != "Team Blog" {
		t.Fatalf("label override ignored: %+v err=%v", items, err)
	}
}

func TestNewRSSRequiresURLs(t *testing.T) {
	t.Parallel()

	if _, err := NewRSS(config.AdapterConfig{Name: "feeds"}, testClient(t), nil); err == nil {
		t.Fatalf("expected error without feed urls")
	}
}
