package checker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/williamzujkowski/domainchecker/pkg/domain"
	"github.com/williamzujkowski/domainchecker/pkg/util"
)

// Checker performs a single domain's availability determination.
type Checker interface {
	Check(ctx context.Context, domainName string) domain.LookupResult
}

// Store loads and saves the cross-run status snapshot.
type Store interface {
	Load() domain.Snapshot
	Save(domain.Snapshot) error
}

// Notifier fires the configured side effects for newly available
// domains. Implementations must not fail the batch.
type Notifier interface {
	Dispatch(newlyAvailable []string, summary, runID string)
}

// Batch orchestrates availability checks for a list of domains on a
// bounded worker pool. One domain's failure never aborts the rest of
// the batch; it lands in the report's error bucket instead.
type Batch struct {
	checker  Checker
	store    Store
	notifier Notifier

	workers   int
	outputDir string
}

// resultsFileName holds one line per available domain with its score.
const resultsFileName = "available_domains.txt"

// NewBatch creates a batch checker. workers defaults to 10 when not
// positive.
func NewBatch(checker Checker, store Store, notifier Notifier, workers int, outputDir string) *Batch {
	if workers <= 0 {
		workers = 10
	}
	return &Batch{
		checker:   checker,
		store:     store,
		notifier:  notifier,
		workers:   workers,
		outputDir: outputDir,
	}
}

// Run checks every domain in the list and returns the aggregated
// report. It fails only on catastrophic setup problems such as an
// unwritable output directory.
func (b *Batch) Run(ctx context.Context, domains []string) (*domain.Report, error) {
	runID := uuid.NewString()
	previous := b.store.Load()

	log.Info().
		Str("run_id", runID).
		Int("domains", len(domains)).
		Int("workers", b.workers).
		Msg("Starting availability batch")

	start := time.Now()
	results := b.dispatch(ctx, domains)
	elapsed := time.Since(start)

	current := domain.Snapshot{}
	report := &domain.Report{
		RunID:          runID,
		Available:      []string{},
		Unavailable:    []string{},
		Errors:         []string{},
		NewlyAvailable: []string{},
		Elapsed:        elapsed,
	}

	for _, res := range results {
		if res.Err != nil {
			log.Error().Err(res.Err).Str("domain", res.Domain).Msg("Error checking domain")
			report.Errors = append(report.Errors, res.Domain)
			continue
		}
		current[res.Domain] = res.Available
		if res.Available {
			report.Available = append(report.Available, res.Domain)
			if !previous[res.Domain] {
				report.NewlyAvailable = append(report.NewlyAvailable, res.Domain)
			}
		} else {
			report.Unavailable = append(report.Unavailable, res.Domain)
		}
	}

	// Completion order is arbitrary; sort for stable artifacts.
	sort.Strings(report.Available)
	sort.Strings(report.Unavailable)
	sort.Strings(report.Errors)
	sort.Strings(report.NewlyAvailable)

	report.Summary = fmt.Sprintf(
		"Checked %d domains in %.1f seconds. %d available, %d newly available.",
		len(domains), elapsed.Seconds(), len(report.Available), len(report.NewlyAvailable),
	)
	log.Info().Str("run_id", runID).Msg(report.Summary)

	if err := b.writeResults(report.Available); err != nil {
		return nil, err
	}

	if err := b.store.Save(current); err != nil {
		log.Error().Err(err).Msg("Error saving status snapshot")
	}

	if len(report.NewlyAvailable) > 0 && b.notifier != nil {
		b.notifier.Dispatch(report.NewlyAvailable, report.Summary, runID)
	}

	return report, nil
}

// dispatch fans the domain list out to the worker pool and collects
// results as they complete.
func (b *Batch) dispatch(ctx context.Context, domains []string) []domain.LookupResult {
	jobs := make(chan string)
	results := make(chan domain.LookupResult, b.workers)

	var wg sync.WaitGroup
	wg.Add(b.workers)
	for i := 0; i < b.workers; i++ {
		go func() {
			defer wg.Done()
			for d := range jobs {
				results <- b.checkOne(ctx, d)
			}
		}()
	}

	go func() {
		for _, d := range domains {
			if d = strings.TrimSpace(d); d != "" {
				jobs <- d
			}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]domain.LookupResult, 0, len(domains))
	for r := range results {
		all = append(all, r)
	}
	return all
}

// checkOne contains a single check, converting a panic that escapes
// the oracle into the report's failure variant so sibling tasks keep
// running.
func (b *Batch) checkOne(ctx context.Context, domainName string) (res domain.LookupResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("domain", domainName).
				Interface("panic", r).
				Msg("Domain check failed unexpectedly")
			res = domain.LookupResult{Domain: domainName, Err: fmt.Errorf("check %s: %v", domainName, r)}
		}
	}()
	return b.checker.Check(ctx, domainName)
}

// writeResults writes the available-domain artifact, one scored line
// per domain. Failure here means the output directory is unusable,
// which aborts the run.
func (b *Batch) writeResults(available []string) error {
	if err := os.MkdirAll(b.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var sb strings.Builder
	for _, d := range available {
		fmt.Fprintf(&sb, "%s (Score: %d)\n", d, util.Score(d))
	}

	path := filepath.Join(b.outputDir, resultsFileName)
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write results file: %w", err)
	}
	return nil
}
