package checker

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/williamzujkowski/domainchecker/pkg/domain"
)

// funcChecker lets each test script the per-domain outcome, including
// panics that must land in the errors bucket.
type funcChecker func(domainName string) domain.LookupResult

func (f funcChecker) Check(ctx context.Context, domainName string) domain.LookupResult {
	return f(domainName)
}

type memStore struct {
	snapshot domain.Snapshot
	saved    domain.Snapshot
}

func (s *memStore) Load() domain.Snapshot {
	if s.snapshot == nil {
		return domain.Snapshot{}
	}
	return s.snapshot
}

func (s *memStore) Save(snap domain.Snapshot) error {
	s.saved = snap
	return nil
}

type recordingNotifier struct {
	calls   int
	domains []string
	summary string
	runID   string
}

func (n *recordingNotifier) Dispatch(newlyAvailable []string, summary, runID string) {
	n.calls++
	n.domains = newlyAvailable
	n.summary = summary
	n.runID = runID
}

func scripted(t *testing.T) funcChecker {
	t.Helper()
	return func(domainName string) domain.LookupResult {
		switch domainName {
		case "ab.com":
			return domain.LookupResult{Domain: domainName, Available: true}
		case "cd.net":
			return domain.LookupResult{Domain: domainName, Available: false}
		case "ef.io":
			panic("simulated lookup crash")
		default:
			t.Fatalf("unexpected domain %q", domainName)
			return domain.LookupResult{}
		}
	}
}

func TestBatch_BucketsAndSummary(t *testing.T) {
	store := &memStore{}
	notifier := &recordingNotifier{}
	b := NewBatch(scripted(t), store, notifier, 4, t.TempDir())

	report, err := b.Run(context.Background(), []string{"ab.com", "cd.net", "ef.io"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if !reflect.DeepEqual(report.Available, []string{"ab.com"}) {
		t.Fatalf("available = %v", report.Available)
	}
	if !reflect.DeepEqual(report.Unavailable, []string{"cd.net"}) {
		t.Fatalf("unavailable = %v", report.Unavailable)
	}
	if !reflect.DeepEqual(report.Errors, []string{"ef.io"}) {
		t.Fatalf("errors = %v", report.Errors)
	}
	if !reflect.DeepEqual(report.NewlyAvailable, []string{"ab.com"}) {
		t.Fatalf("newly available = %v", report.NewlyAvailable)
	}

	if !strings.HasPrefix(report.Summary, "Checked 3 domains in ") {
		t.Fatalf("summary = %q", report.Summary)
	}
	if !strings.HasSuffix(report.Summary, "1 available, 1 newly available.") {
		t.Fatalf("summary = %q", report.Summary)
	}
	if report.RunID == "" {
		t.Fatal("expected a run ID")
	}
}

func TestBatch_ErroredDomainLeftOutOfSnapshot(t *testing.T) {
	store := &memStore{}
	b := NewBatch(scripted(t), store, nil, 2, t.TempDir())

	if _, err := b.Run(context.Background(), []string{"ab.com", "cd.net", "ef.io"}); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := domain.Snapshot{"ab.com": true, "cd.net": false}
	if !reflect.DeepEqual(store.saved, want) {
		t.Fatalf("saved snapshot = %v, want %v", store.saved, want)
	}
}

func TestBatch_SnapshotSuppressesRepeatNotifications(t *testing.T) {
	store := &memStore{}
	notifier := &recordingNotifier{}
	dir := t.TempDir()

	domains := []string{"ab.com", "cd.net", "ef.io"}

	b := NewBatch(scripted(t), store, notifier, 4, dir)
	if _, err := b.Run(context.Background(), domains); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if notifier.calls != 1 {
		t.Fatalf("expected one notification after first run, got %d", notifier.calls)
	}
	if !reflect.DeepEqual(notifier.domains, []string{"ab.com"}) {
		t.Fatalf("notified domains = %v", notifier.domains)
	}

	// Second run against the snapshot the first run produced.
	store.snapshot = store.saved
	report, err := b.Run(context.Background(), domains)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(report.NewlyAvailable) != 0 {
		t.Fatalf("expected no newly available on repeat run, got %v", report.NewlyAvailable)
	}
	if notifier.calls != 1 {
		t.Fatalf("notifier must not fire on repeat run, calls=%d", notifier.calls)
	}
}

func TestBatch_WritesScoredResultsArtifact(t *testing.T) {
	dir := t.TempDir()
	b := NewBatch(scripted(t), &memStore{}, nil, 4, dir)

	if _, err := b.Run(context.Background(), []string{"ab.com", "cd.net", "ef.io"}); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, resultsFileName))
	if err != nil {
		t.Fatalf("read results file: %v", err)
	}
	if got := string(data); got != "ab.com (Score: 70)\n" {
		t.Fatalf("results file = %q", got)
	}
}

func TestBatch_ManyDomainsBoundedPool(t *testing.T) {
	available := funcChecker(func(domainName string) domain.LookupResult {
		return domain.LookupResult{Domain: domainName, Available: true}
	})

	domains := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		domains = append(domains, string(rune('a'+i%26))+"x"+string(rune('a'+i/26))+".org")
	}

	b := NewBatch(available, &memStore{}, nil, 3, t.TempDir())
	report, err := b.Run(context.Background(), domains)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	seen := make(map[string]struct{}, len(report.Available))
	for _, d := range report.Available {
		seen[d] = struct{}{}
	}
	for _, d := range domains {
		if _, ok := seen[d]; !ok {
			t.Fatalf("domain %s missing from report", d)
		}
	}
}
