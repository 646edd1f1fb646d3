// Package pipeline runs one build: cross-reference load, partitioned fetch,
// record assembly and output.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/groupements-cli/internal/banatic"
	"github.com/sells-group/groupements-cli/internal/division"
	"github.com/sells-group/groupements-cli/internal/groupement"
	"github.com/sells-group/groupements-cli/internal/model"
	"github.com/sells-group/groupements-cli/internal/sink"
	"github.com/sells-group/groupements-cli/internal/xref"
)

// Phase names, in execution order.
const (
	PhaseXRef     = "xref"
	PhaseFetch    = "fetch"
	PhaseAssemble = "assemble"
	PhaseWrite    = "write"
)

// XRefLoader loads the SIREN → INSEE mapping.
type XRefLoader func(ctx context.Context, path string) (xref.Mapping, error)

// RowSource returns the raw rows of the given divisions.
type RowSource interface {
	Fetch(ctx context.Context, divs []division.Division) ([]model.Row, error)
	Stats() banatic.Stats
}

// Options carries the per-run inputs.
type Options struct {
	XRefPath  string
	Divisions []division.Division
	Assemble  groupement.Options
}

// PhaseResult records how one phase ended.
type PhaseResult struct {
	Name     string `json:"name"`
	Duration int64  `json:"duration_ms"`
	Error    string `json:"error,omitempty"`
}

// Stats summarizes a run.
type Stats struct {
	Divisions int               `json:"divisions"`
	XRef      int               `json:"xref_entries"`
	Fetch     banatic.Stats     `json:"fetch"`
	Assembly  groupement.Report `json:"assembly"`
	Phases    []PhaseResult     `json:"phases"`
}

// Pipeline sequences the build phases. It holds no transformation logic.
type Pipeline struct {
	loadXRef XRefLoader
	source   RowSource
	out      sink.Sink
	opts     Options
}

// New creates a Pipeline. A nil loader falls back to xref.Load.
func New(loadXRef XRefLoader, source RowSource, out sink.Sink, opts Options) *Pipeline {
	if loadXRef == nil {
		loadXRef = xref.Load
	}
	return &Pipeline{loadXRef: loadXRef, source: source, out: out, opts: opts}
}

// Run executes every phase in order. The first failing phase aborts the run;
// the returned Stats cover the phases that ran.
func (p *Pipeline) Run(ctx context.Context) (*Stats, error) {
	log := zap.L().With(zap.String("component", "pipeline"))
	log.Info("pipeline: starting build",
		zap.Int("divisions", len(p.opts.Divisions)),
		zap.String("xref", p.opts.XRefPath),
	)

	stats := &Stats{Divisions: len(p.opts.Divisions)}

	trackPhase := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		res := PhaseResult{Name: name, Duration: time.Since(start).Milliseconds()}
		if err != nil {
			res.Error = err.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", res.Duration),
				zap.Error(err),
			)
		} else {
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", res.Duration),
			)
		}
		stats.Phases = append(stats.Phases, res)
		return err
	}

	// Cross-reference errors abort before any network traffic.
	var mapping xref.Mapping
	if err := trackPhase(PhaseXRef, func() error {
		var err error
		mapping, err = p.loadXRef(ctx, p.opts.XRefPath)
		stats.XRef = len(mapping)
		return err
	}); err != nil {
		return stats, eris.Wrap(err, "pipeline: load cross-reference")
	}

	var rows []model.Row
	err := trackPhase(PhaseFetch, func() error {
		var err error
		rows, err = p.source.Fetch(ctx, p.opts.Divisions)
		return err
	})
	stats.Fetch = p.source.Stats()
	if err != nil {
		return stats, eris.Wrap(err, "pipeline: fetch")
	}

	var out []model.Groupement
	if err := trackPhase(PhaseAssemble, func() error {
		var err error
		out, stats.Assembly, err = groupement.Assemble(rows, mapping, p.opts.Assemble)
		return err
	}); err != nil {
		return stats, eris.Wrap(err, "pipeline: assemble")
	}

	if err := trackPhase(PhaseWrite, func() error {
		return p.out.Write(ctx, out)
	}); err != nil {
		return stats, eris.Wrap(err, "pipeline: write output")
	}

	log.Info("pipeline: build complete",
		zap.Int("cache_hits", stats.Fetch.Hits),
		zap.Int("fetched", stats.Fetch.Fetched),
		zap.Int("rows", stats.Fetch.Rows),
		zap.Int("dropped_rows", stats.Assembly.DroppedRows),
		zap.Int("groupements", stats.Assembly.Groupements),
		zap.Int("unresolved_communes", stats.Assembly.UnresolvedCommunes),
	)
	return stats, nil
}
