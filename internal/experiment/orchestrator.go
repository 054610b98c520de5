// Package experiment expands a run configuration into the full cartesian
// case list and drives it through the pipeline with a bounded worker pool.
// Cases are independent and share no mutable state; the only shared
// structure is the record accumulator, which uses one pre-assigned slot per
// case so concurrent completions cannot interleave and the persisted order
// is deterministic regardless of scheduling.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-prompteval/internal/config"
	"github.com/ahrav/go-prompteval/internal/domain"
	"github.com/ahrav/go-prompteval/internal/llm"
	"github.com/ahrav/go-prompteval/internal/pipeline"
)

// ErrSweepHalted indicates the sweep was aborted by a fatal condition, such
// as an authentication failure on the run's only provider. Records completed
// before the halt are preserved and persisted.
var ErrSweepHalted = errors.New("sweep halted")

// Runner executes one case through the pipeline. Implemented by
// pipeline.Executor; redeclared here so the orchestrator can be tested with
// a scripted runner.
type Runner interface {
	Run(ctx context.Context, c domain.Case) (*domain.PipelineResult, error)
}

// Sink persists a completed record sequence in a single atomic write.
type Sink interface {
	Persist(records []domain.Record) error
}

// Orchestrator owns the in-flight case list and the record accumulator for
// one sweep. Records become immutable history once handed to the sink.
type Orchestrator struct {
	runner      Runner
	sink        Sink
	concurrency int
	logger      *slog.Logger
}

// NewOrchestrator builds an orchestrator running at most concurrency cases
// in parallel. The bound doubles as backpressure against provider-side rate
// limits.
func NewOrchestrator(runner Runner, sink Sink, concurrency int, logger *slog.Logger) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		runner:      runner,
		sink:        sink,
		concurrency: concurrency,
		logger:      logger.With("component", "experiment"),
	}
}

// ExpandCases computes the cartesian product of (domain, prompt) pairs and
// techniques in deterministic order: domain-major with sorted domain names,
// then prompts in configured order, then techniques in configured order.
// The result has exactly len(domains)×len(prompts)×len(techniques) cases
// with unique identities.
func ExpandCases(domains map[string][]string, techniques []domain.Technique) []domain.Case {
	names := make([]string, 0, len(domains))
	for name := range domains {
		names = append(names, name)
	}
	sort.Strings(names)

	var cases []domain.Case
	for _, name := range names {
		for _, prompt := range domains[name] {
			for _, technique := range techniques {
				cases = append(cases, domain.Case{
					Domain:    name,
					Prompt:    prompt,
					Technique: technique,
				})
			}
		}
	}
	return cases
}

// Run executes every case with failure isolation: a provider or parse
// failure is recorded on its case and the sweep continues. Authentication
// failures cancel the remainder of the sweep, since the run's provider
// cannot recover without a configuration fix.
//
// Whatever happens, all completed records are persisted in one atomic write
// before Run returns; a persistence failure is fatal and never masked. The
// returned records are in expansion order.
func (o *Orchestrator) Run(ctx context.Context, cases []domain.Case) ([]domain.Record, error) {
	slots := make([]*domain.Record, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, c := range cases {
		g.Go(func() error {
			// A halted sweep leaves the remaining slots empty rather than
			// burning provider calls that will be discarded.
			if gctx.Err() != nil {
				return nil
			}

			record, fatal := o.runCase(gctx, c)
			slots[i] = &record
			return fatal
		})
	}

	runErr := g.Wait()
	if runErr != nil {
		runErr = fmt.Errorf("%w: %w", ErrSweepHalted, runErr)
	}

	records := make([]domain.Record, 0, len(cases))
	for _, r := range slots {
		if r != nil {
			records = append(records, *r)
		}
	}

	o.logger.Info("sweep finished",
		"cases", len(cases),
		"completed", len(records),
		"halted", runErr != nil)

	if err := o.sink.Persist(records); err != nil {
		return records, errors.Join(runErr, err)
	}
	return records, runErr
}

// runCase executes one case and converts the outcome into a record. The
// returned error is non-nil only for fatal conditions that must halt the
// sweep; ordinary case failures are folded into the record.
func (o *Orchestrator) runCase(ctx context.Context, c domain.Case) (domain.Record, error) {
	result, err := o.runner.Run(ctx, c)
	if err == nil {
		return domain.Record{Case: c, Result: *result, Status: domain.StatusOK}, nil
	}

	record := domain.Record{
		Case:          c,
		Status:        pipeline.FailureStatus(err),
		FailureReason: err.Error(),
	}
	if result != nil {
		// Parse failures keep the partial result: justification and
		// citations may be present even without a score.
		record.Result = *result
	}

	o.logger.Warn("case failed",
		"domain", c.Domain,
		"technique", string(c.Technique),
		"status", string(record.Status),
		"error", err)

	if llm.IsAuthentication(err) {
		// A rejected credential is a setup fault, not a runtime one; the
		// halt carries the configuration error class so callers can tell
		// the two apart.
		return record, fmt.Errorf("%w: authentication failed for provider: %w", config.ErrConfiguration, err)
	}
	return record, nil
}
