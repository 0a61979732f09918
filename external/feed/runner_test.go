package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pitchrank/pitchrank/internal/infrastructure/repository/memory"
)

type feedServer struct {
	mu       sync.Mutex
	hits     map[string]int
	failures map[string]bool
	server   *httptest.Server
}

func newFeedServer(t *testing.T) *feedServer {
	t.Helper()
	fs := &feedServer{
		hits:     make(map[string]int),
		failures: make(map[string]bool),
	}
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.hits[r.URL.Path]++
		fail := fs.failures[r.URL.Path]
		fs.mu.Unlock()

		if fail {
			http.Error(w, "upstream broke", http.StatusInternalServerError)
			return
		}

		var payload string
		switch {
		case filepath.Base(r.URL.Path) == "standings":
			payload = `{"data":[{"teamId":"t-1","teamName":"Sporting Blue Valley 2012B","points":20,"position":1}]}`
		case filepath.Base(r.URL.Path) == "results":
			payload = `{"data":[{"teamId":"t-1","teamName":"Sporting Blue Valley 2012B","opponentName":"KC Athletics 2012B","goalsScored":2,"goalsConceded":0,"playedAt":"2026-04-12T00:00:00Z"}]}`
		default:
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *feedServer) hitCount(path string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.hits[path]
}

func (fs *feedServer) failPath(path string, fail bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.failures[path] = fail
}

func newTestRunner(t *testing.T, fs *feedServer, checkpointPath string) (*Runner, *memory.StagedRowRepository) {
	t.Helper()
	client := NewClient(ClientConfig{
		BaseURL:           fs.server.URL,
		Timeout:           2 * time.Second,
		MaxRetries:        0,
		RateLimitCooldown: time.Millisecond,
		BackoffBase:       time.Millisecond,
	})
	stagedRepo := memory.NewStagedRowRepository(nil)
	runner := NewRunner(client, stagedRepo, nil, RunnerConfig{
		Provider:       "heartland",
		Workers:        2,
		CheckpointPath: checkpointPath,
	})
	return runner, stagedRepo
}

func testUnits(n int) []Unit {
	units := make([]Unit, 0, n)
	for i := 0; i < n; i++ {
		units = append(units, Unit{
			DivisionID: fmt.Sprintf("d-%d", i+1),
			LeagueName: "Heartland Premier",
			Gender:     "B",
			AgeGroup:   "U13",
			Division:   "Premier 1",
		})
	}
	return units
}

func TestRunner_Run_FetchesAllUnits(t *testing.T) {
	t.Parallel()

	fs := newFeedServer(t)
	checkpointPath := filepath.Join(t.TempDir(), "checkpoint.json")
	runner, stagedRepo := newTestRunner(t, fs, checkpointPath)

	stats, err := runner.Run(context.Background(), testUnits(3))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Units != 3 || stats.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Fetched != 6 || stats.Inserted != 6 {
		t.Fatalf("expected 6 rows fetched and inserted, got %+v", stats)
	}
	if got := stagedRepo.UnprocessedCount(); got != 6 {
		t.Fatalf("expected 6 staged rows, got=%d", got)
	}

	checkpoint, err := LoadCheckpoint(checkpointPath)
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if checkpoint.Provider != "heartland" {
		t.Fatalf("unexpected checkpoint provider: %q", checkpoint.Provider)
	}
	if len(checkpoint.Completed) != 3 {
		t.Fatalf("expected 3 completed units, got=%v", checkpoint.Completed)
	}
	if checkpoint.UpdatedAt.IsZero() {
		t.Fatalf("expected checkpoint timestamp")
	}
}

func TestRunner_Run_ResumesFromCheckpoint(t *testing.T) {
	t.Parallel()

	fs := newFeedServer(t)
	checkpointPath := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := SaveCheckpoint(checkpointPath, Checkpoint{
		Provider:  "heartland",
		Completed: []string{"d-1"},
	}); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	runner, _ := newTestRunner(t, fs, checkpointPath)
	stats, err := runner.Run(context.Background(), testUnits(2))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Resumed != 1 {
		t.Fatalf("expected 1 resumed unit, got %+v", stats)
	}
	if got := fs.hitCount("/divisions/d-1/standings"); got != 0 {
		t.Fatalf("completed unit refetched %d times", got)
	}
	if got := fs.hitCount("/divisions/d-2/standings"); got != 1 {
		t.Fatalf("expected pending unit fetched once, got=%d", got)
	}
}

func TestRunner_Run_FailedUnitStaysPending(t *testing.T) {
	t.Parallel()

	fs := newFeedServer(t)
	fs.failPath("/divisions/d-2/standings", true)
	checkpointPath := filepath.Join(t.TempDir(), "checkpoint.json")
	runner, stagedRepo := newTestRunner(t, fs, checkpointPath)

	stats, err := runner.Run(context.Background(), testUnits(2))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Failed != 1 {
		t.Fatalf("expected 1 failed unit, got %+v", stats)
	}
	if got := stagedRepo.UnprocessedCount(); got != 2 {
		t.Fatalf("expected only the healthy unit's rows, got=%d", got)
	}

	checkpoint, err := LoadCheckpoint(checkpointPath)
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if len(checkpoint.Completed) != 1 || checkpoint.Completed[0] != "d-1" {
		t.Fatalf("failed unit must stay out of checkpoint: %v", checkpoint.Completed)
	}

	// Next run only retries the broken unit.
	fs.failPath("/divisions/d-2/standings", false)
	runner2, _ := newTestRunner(t, fs, checkpointPath)
	stats2, err := runner2.Run(context.Background(), testUnits(2))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats2.Resumed != 1 {
		t.Fatalf("expected healthy unit resumed, got %+v", stats2)
	}
	if got := fs.hitCount("/divisions/d-1/standings"); got != 1 {
		t.Fatalf("healthy unit refetched, hits=%d", got)
	}
}

func TestRunner_Run_RejectsForeignCheckpoint(t *testing.T) {
	t.Parallel()

	fs := newFeedServer(t)
	checkpointPath := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := SaveCheckpoint(checkpointPath, Checkpoint{Provider: "other-provider"}); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	runner, _ := newTestRunner(t, fs, checkpointPath)
	if _, err := runner.Run(context.Background(), testUnits(1)); err == nil {
		t.Fatalf("expected provider mismatch error")
	}
}
