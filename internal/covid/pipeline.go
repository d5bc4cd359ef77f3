package covid

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Fetcher produces the two raw datasets the transform consumes. Both must
// succeed before transformation begins.
type Fetcher interface {
	FetchHistorical(ctx context.Context) ([]HistoricalPoint, error)
	FetchCountries(ctx context.Context) ([]CountryEntry, error)
}

// Archiver persists the enriched table to a columnar file at the given path.
type Archiver interface {
	Persist(records []EnrichedRecord, path string) error
}

// Publisher commits a written file and pushes it to the configured remote.
type Publisher interface {
	Publish(path, commitMessage string) error
}

// RunResult summarizes one completed pipeline run.
type RunResult struct {
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Rows          int       `json:"rows"`
	Path          string    `json:"path"`
	CommitMessage string    `json:"commit_message,omitempty"`
}

// Pipeline runs the full sequence: fetch, transform, persist, then publish.
// Each run recomputes the entire history and overwrites the output file, so
// rerunning after a failure is always safe.
type Pipeline struct {
	fetcher    Fetcher
	archiver   Archiver
	publisher  Publisher // nil disables the publish stage
	outputPath string
	label      string
	log        *slog.Logger
	now        func() time.Time
}

// NewPipeline wires the three collaborators. commitLabel prefixes the
// timestamped commit message.
func NewPipeline(fetcher Fetcher, archiver Archiver, publisher Publisher, outputPath, commitLabel string, log *slog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		archiver:   archiver,
		publisher:  publisher,
		outputPath: outputPath,
		label:      commitLabel,
		log:        log,
		now:        time.Now,
	}
}

// Run executes one complete pass. It stops at the first failure; there is no
// retry and no partial recovery between stages.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	started := p.now()
	res := RunResult{StartedAt: started, Path: p.outputPath}

	p.log.Info("fetching source data")
	historical, err := p.fetcher.FetchHistorical(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch historical data: %w", err)
	}
	countries, err := p.fetcher.FetchCountries(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch country data: %w", err)
	}

	p.log.Info("transforming", "days", len(historical), "countries", len(countries))
	records := Transform(historical, countries)
	res.Rows = len(records)

	p.log.Info("writing snapshot", "path", p.outputPath, "rows", res.Rows)
	if err := p.archiver.Persist(records, p.outputPath); err != nil {
		return res, fmt.Errorf("persist snapshot: %w", err)
	}

	if p.publisher != nil {
		msg := fmt.Sprintf("%s %s", p.label, started.Format("2006-01-02 15:04:05"))
		p.log.Info("publishing snapshot", "message", msg)
		if err := p.publisher.Publish(p.outputPath, msg); err != nil {
			return res, fmt.Errorf("publish snapshot: %w", err)
		}
		res.CommitMessage = msg
	}

	res.FinishedAt = p.now()
	p.log.Info("run complete", "rows", res.Rows, "took", res.FinishedAt.Sub(started).Round(time.Millisecond))
	return res, nil
}
