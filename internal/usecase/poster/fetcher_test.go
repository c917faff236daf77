package poster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/movierec/internal/domain"
)

// --- Mocks ---

// scriptedLookup answers from a fixed table; titles in fail return an error.
type scriptedLookup struct {
	urls  map[string]string
	fail  map[string]error
	delay func(title string) time.Duration

	calls    atomic.Int64
	inFlight atomic.Int64
	maxSeen  atomic.Int64
}

func (m *scriptedLookup) Lookup(_ context.Context, title string) (string, error) {
	m.calls.Add(1)
	cur := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		prev := m.maxSeen.Load()
		if cur <= prev || m.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}

	if m.delay != nil {
		time.Sleep(m.delay(title))
	}
	if err, ok := m.fail[title]; ok {
		return "", err
	}
	if url, ok := m.urls[title]; ok {
		return url, nil
	}
	return "", domain.ErrPosterNotFound
}

// --- Tests ---

func TestFetch_MixedSuccessAndFailure(t *testing.T) {
	lookup := &scriptedLookup{
		urls: map[string]string{
			"Alien":   "https://img/alien.jpg",
			"Heat":    "https://img/heat.jpg",
			"Vertigo": "https://img/vertigo.jpg",
		},
		fail: map[string]error{
			"Brazil": errors.New("connection reset"),
			"Ran":    fmt.Errorf("tmdb: %w", domain.ErrPosterProviderError),
		},
		// Make completion order differ from submission order.
		delay: func(title string) time.Duration {
			if title == "Alien" || title == "Brazil" {
				return 20 * time.Millisecond
			}
			return 0
		},
	}
	f := NewFetcher(lookup, zap.NewNop())

	got := f.Fetch(context.Background(), []string{"Alien", "Brazil", "Heat", "Ran", "Vertigo"})

	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d: %v", len(got), got)
	}
	for _, title := range []string{"Alien", "Heat", "Vertigo"} {
		url, ok := got[title].URL()
		if !ok || url != lookup.urls[title] {
			t.Errorf("%s: got (%q, %v), want %q", title, url, ok, lookup.urls[title])
		}
	}
	for _, title := range []string{"Brazil", "Ran"} {
		if got[title].IsFound() {
			t.Errorf("%s: expected missing poster", title)
		}
	}
	if lookup.calls.Load() != 5 {
		t.Errorf("expected 5 lookups, got %d", lookup.calls.Load())
	}
}

func TestFetch_Empty(t *testing.T) {
	lookup := &scriptedLookup{}
	f := NewFetcher(lookup, zap.NewNop())

	got := f.Fetch(context.Background(), nil)
	if got == nil {
		t.Fatal("expected non-nil empty map")
	}
	if len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
	if lookup.calls.Load() != 0 {
		t.Errorf("expected no lookups, got %d", lookup.calls.Load())
	}
}

func TestFetch_DuplicatesCollapse(t *testing.T) {
	lookup := &scriptedLookup{urls: map[string]string{"Up": "https://img/up.jpg"}}
	f := NewFetcher(lookup, zap.NewNop())

	got := f.Fetch(context.Background(), []string{"Up", "Up", "Up"})
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if lookup.calls.Load() != 1 {
		t.Errorf("expected 1 lookup for duplicated title, got %d", lookup.calls.Load())
	}
}

func TestFetch_BoundedConcurrency(t *testing.T) {
	titles := make([]string, 20)
	urls := make(map[string]string, len(titles))
	for i := range titles {
		titles[i] = fmt.Sprintf("movie-%02d", i)
		urls[titles[i]] = "https://img/" + titles[i]
	}
	lookup := &scriptedLookup{
		urls:  urls,
		delay: func(string) time.Duration { return 10 * time.Millisecond },
	}
	f := NewFetcher(lookup, zap.NewNop())

	got := f.Fetch(context.Background(), titles)
	if len(got) != len(titles) {
		t.Fatalf("expected %d entries, got %d", len(titles), len(got))
	}
	if maxSeen := lookup.maxSeen.Load(); maxSeen > DefaultWorkers {
		t.Errorf("observed %d concurrent lookups, limit is %d", maxSeen, DefaultWorkers)
	}
	if lookup.maxSeen.Load() < 2 {
		t.Errorf("expected lookups to run in parallel, max in flight = %d", lookup.maxSeen.Load())
	}
}

func TestFetch_WithWorkers(t *testing.T) {
	lookup := &scriptedLookup{
		urls:  map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"},
		delay: func(string) time.Duration { return 5 * time.Millisecond },
	}
	f := NewFetcher(lookup, zap.NewNop()).WithWorkers(1)
	if f.Workers() != 1 {
		t.Fatalf("Workers() = %d, want 1", f.Workers())
	}

	f.Fetch(context.Background(), []string{"a", "b", "c", "d"})
	if lookup.maxSeen.Load() != 1 {
		t.Errorf("expected serial lookups, max in flight = %d", lookup.maxSeen.Load())
	}

	f.WithWorkers(-3)
	if f.Workers() != 1 {
		t.Errorf("WithWorkers(-3) should be ignored, got %d", f.Workers())
	}
}

func TestFetch_PanicIsolated(t *testing.T) {
	lookup := domain.PosterLookupFunc(func(_ context.Context, title string) (string, error) {
		if title == "Bad" {
			panic("provider bug")
		}
		return "https://img/" + title, nil
	})
	f := NewFetcher(lookup, zap.NewNop())

	got := f.Fetch(context.Background(), []string{"Good", "Bad", "Fine"})
	if got["Bad"].IsFound() {
		t.Error("panicking lookup should map to missing")
	}
	if !got["Good"].IsFound() || !got["Fine"].IsFound() {
		t.Errorf("siblings should succeed: %v", got)
	}
}

func TestFetch_EmptyURLIsMissing(t *testing.T) {
	lookup := domain.PosterLookupFunc(func(context.Context, string) (string, error) {
		return "", nil
	})
	got := NewFetcher(lookup, zap.NewNop()).Fetch(context.Background(), []string{"X"})
	if got["X"].IsFound() {
		t.Error("empty URL should map to missing")
	}
}

func TestFetch_ConcurrentCallersIsolated(t *testing.T) {
	lookup := domain.PosterLookupFunc(func(_ context.Context, title string) (string, error) {
		time.Sleep(time.Millisecond)
		if title == "Shared-fail" {
			return "", errors.New("boom")
		}
		return "https://img/" + title, nil
	})
	f := NewFetcher(lookup, zap.NewNop())

	setA := []string{"A1", "A2", "Shared", "Shared-fail", "A3"}
	setB := []string{"B1", "Shared", "B2", "Shared-fail", "B3"}

	var wg sync.WaitGroup
	results := make([]map[string]bool, 2)
	for i, set := range [][]string{setA, setB} {
		wg.Add(1)
		go func(i int, set []string) {
			defer wg.Done()
			for range 20 {
				got := f.Fetch(context.Background(), set)
				found := make(map[string]bool, len(got))
				for k, v := range got {
					found[k] = v.IsFound()
				}
				if len(got) != len(set) {
					t.Errorf("caller %d: got %d entries, want %d", i, len(got), len(set))
				}
				for _, title := range set {
					if _, ok := got[title]; !ok {
						t.Errorf("caller %d: missing key %q", i, title)
					}
				}
				results[i] = found
			}
		}(i, set)
	}
	wg.Wait()

	for i, set := range [][]string{setA, setB} {
		for _, title := range set {
			want := title != "Shared-fail"
			if results[i][title] != want {
				t.Errorf("caller %d: %q found=%v, want %v", i, title, results[i][title], want)
			}
		}
		for title := range results[i] {
			if i == 0 && (title == "B1" || title == "B2" || title == "B3") {
				t.Errorf("caller 0 leaked key %q from caller 1", title)
			}
			if i == 1 && (title == "A1" || title == "A2" || title == "A3") {
				t.Errorf("caller 1 leaked key %q from caller 0", title)
			}
		}
	}
}

func TestFetch_OutcomeCounter(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_outcomes"}, []string{"outcome"})
	lookup := &scriptedLookup{
		urls: map[string]string{"ok": "https://img/ok"},
		fail: map[string]error{"err": errors.New("down")},
	}
	f := NewFetcher(lookup, zap.NewNop()).WithOutcomeCounter(counter)

	f.Fetch(context.Background(), []string{"ok", "err", "none"})

	for label, want := range map[string]float64{"found": 1, "error": 1, "missing": 1} {
		if got := testutil.ToFloat64(counter.WithLabelValues(label)); got != want {
			t.Errorf("outcome %q = %v, want %v", label, got, want)
		}
	}
}
