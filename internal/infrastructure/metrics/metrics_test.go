package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderObserveFetch(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveFetch("hn", 7, nil, 120*time.Millisecond)
	r.ObserveFetch("hn", 3, nil, time.Second)
	r.ObserveFetch("rss", 0, errors.New("down"), time.Second)

	if got := testutil.ToFloat64(r.fetches.WithLabelValues("hn", "ok")); got != 2 {
		t.Fatalf("hn ok fetches = %v", got)
	}
	if got := testutil.ToFloat64(r.fetches.WithLabelValues("rss", "error")); got != 1 {
		t.Fatalf("rss error fetches = %v", got)
	}
	if got := testutil.ToFloat64(r.items.WithLabelValues("hn")); got != 10 {
		t.Fatalf("hn items = %v", got)
	}
}

func TestRecorderStagesAndTextfile(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveStage("fetched", 12)
	r.ObserveStage("fetched", 9)
	if got := testutil.ToFloat64(r.stages.WithLabelValues("fetched")); got != 9 {
		t.Fatalf("stage gauge = %v", got)
	}

	path := filepath.Join(t.TempDir(), "newsdigest.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile returned error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(raw), `newsdigest_pipeline_items{stage="fetched"} 9`) {
		t.Fatalf("textfile missing stage gauge:\n%s", raw)
	}
}
