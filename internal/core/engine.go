// Package core drives a scan: it wires the walker, the metadata probe,
// the signal extractor and the scoring model into a pipeline and collects
// the result into a single report owned by the run.
package core

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"go.uber.org/zap"

	"github.com/mesaifali/trashdoctor/internal/config"
	"github.com/mesaifali/trashdoctor/internal/disposition"
	"github.com/mesaifali/trashdoctor/internal/executor"
	"github.com/mesaifali/trashdoctor/internal/filesystem"
	"github.com/mesaifali/trashdoctor/internal/profiles"
	"github.com/mesaifali/trashdoctor/internal/ranking"
	"github.com/mesaifali/trashdoctor/internal/scoring"
	"github.com/mesaifali/trashdoctor/internal/signal"
	"github.com/mesaifali/trashdoctor/pkg/models"
)

// AbortError marks a scan that could not run to completion. The partial
// report gathered so far travels with it.
type AbortError struct {
	Reason string
	Report *models.ScanReport
	Err    error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("scan aborted: %s: %v", e.Reason, e.Err)
}

func (e *AbortError) Unwrap() error { return e.Err }

// Engine performs scans for one validated configuration snapshot.
type Engine struct {
	cfg     *config.Config
	profile *profiles.Profile
	logger  *zap.Logger

	// scoreCfg is the snapshot with profile weight and threshold
	// overrides merged in, validated at construction.
	scoreCfg *config.Config
}

// NewEngine validates the configuration, resolves the selected profile and
// returns an engine ready to scan. A contradictory configuration never
// produces an engine.
func NewEngine(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, logger: logger}
	if cfg.Profile != "" {
		registry, err := profiles.NewLoader(cfg.ProfilesPath).Load()
		if err != nil {
			return nil, fmt.Errorf("loading profiles: %w", err)
		}
		e.profile, err = registry.Get(cfg.Profile)
		if err != nil {
			return nil, err
		}
		e.logger.Info("Using cleanup profile",
			zap.String("profile", e.profile.Name),
			zap.String("description", e.profile.Description))
	}

	// Profile overrides can wreck the weighting the top-level snapshot
	// already passed, so the merged scoring config is validated too.
	e.scoreCfg = e.scoringConfig()
	if e.profile != nil {
		if err := e.scoreCfg.ValidateScoring(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", e.profile.Name, err)
		}
	}

	return e, nil
}

// result is one unit of collector input.
type result struct {
	isDir     bool
	candidate *models.Candidate
	skip      *models.SkipRecord
}

// Scan walks every configured root, scores the files and returns a run
// holding the report, the ranked candidates and their disposition gate.
// Two scans over an unmodified tree with the same configuration produce
// identically ordered candidates. Cancellation yields a partial run and
// context.Canceled, never a silent truncation.
func (e *Engine) Scan(ctx context.Context) (*ScanRun, error) {
	now := time.Now()
	report := &models.ScanReport{
		StartTime: now,
		Roots:     append([]string(nil), e.cfg.Roots...),
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	report.Stats.WorkersUsed = workers

	e.logger.Info("Starting scan",
		zap.Strings("roots", e.cfg.Roots),
		zap.Int("workers", workers))

	ranker := ranking.New()
	gate := disposition.NewGate(executor.NewLocal(e.cfg.ArchiveDir, e.logger), e.logger)
	model := scoring.NewModel(e.scoreCfg, now)
	extractor := signal.NewExtractor(now, e.cfg.SizeBuckets)
	probe := filesystem.NewProbe(e.cfg.FollowSymlinkMeta, e.logger)
	walker := filesystem.NewWalker(e.cfg, e.logger)

	rawCh := make(chan filesystem.RawEntry, workers*2)
	resCh := make(chan result, workers*2)

	// Worker pool: probe, filter, extract, score. Per-entry failures
	// become skip records and never stop a sibling.
	var workerWG sync.WaitGroup
	for i := 0; i < workers; i++ {
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			for raw := range rawCh {
				resCh <- e.process(raw, probe, extractor, model)
			}
		}()
	}

	// Collector: the only goroutine that touches the report.
	var collectorWG sync.WaitGroup
	collectorWG.Add(1)
	go func() {
		defer collectorWG.Done()
		for res := range resCh {
			switch {
			case res.isDir:
				report.Stats.DirsVisited++
			case res.skip != nil:
				report.AddSkip(*res.skip)
			case res.candidate != nil:
				report.Stats.EntriesVisited++
				report.TallyCandidate(res.candidate)
				ranker.Add(res.candidate)
				gate.Register(res.candidate)
			}
		}
	}()

	walkErr := e.walkRoots(ctx, walker, rawCh, resCh, report)

	close(rawCh)
	workerWG.Wait()
	close(resCh)
	collectorWG.Wait()

	// The collector only tallies; the candidate list is filled here
	// once, in canonical rank order, independent of worker completion
	// order.
	report.Candidates = ranker.All()
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	run := newScanRun(e.cfg, report, ranker, gate, e.logger)

	if walkErr != nil {
		report.Partial = true
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			report.Cancelled = true
			e.logger.Warn("Scan cancelled",
				zap.Int("candidates", len(report.Candidates)))
			return run, walkErr
		}
		return run, &AbortError{Reason: "scan root became inaccessible", Report: report, Err: walkErr}
	}

	e.logger.Info("Scan completed",
		zap.Duration("duration", report.Duration),
		zap.Int("entries", report.Stats.EntriesVisited),
		zap.Int("candidates", len(report.Candidates)),
		zap.Int("skipped", report.Stats.EntriesSkipped))
	return run, nil
}

// walkRoots traverses the roots in configured order on the caller's
// goroutine, feeding the worker pool. Walker-side skips bypass the pool
// and go straight to the collector.
func (e *Engine) walkRoots(ctx context.Context, walker *filesystem.Walker, rawCh chan<- filesystem.RawEntry, resCh chan<- result, report *models.ScanReport) error {
	for _, root := range e.cfg.Roots {
		e.captureDiskUsage(root, report)

		err := walker.Walk(ctx, root,
			func(raw filesystem.RawEntry) error {
				rawCh <- raw
				return nil
			},
			func(rec models.SkipRecord) {
				resCh <- result{skip: &rec}
			})
		if err != nil {
			return err
		}
	}
	return nil
}

// process turns one raw walker entry into a collector result.
func (e *Engine) process(raw filesystem.RawEntry, probe *filesystem.Probe, extractor *signal.Extractor, model *scoring.Model) result {
	if raw.IsDir {
		return result{isDir: true}
	}

	entry, err := probe.Stat(raw)
	if err != nil {
		var probeErr *filesystem.ProbeError
		reason := models.SkipTransient
		if errors.As(err, &probeErr) {
			reason = probeErr.SkipReason()
		}
		return result{skip: &models.SkipRecord{Path: raw.Path, Reason: reason, Detail: err.Error()}}
	}

	if entry.Size < e.cfg.MinSizeBytes {
		return result{skip: &models.SkipRecord{Path: entry.Path, Reason: models.SkipBelowMinSize}}
	}

	sig := extractor.Extract(entry)

	if e.profile != nil && !e.profile.Matches(*entry, sig) {
		return result{skip: &models.SkipRecord{
			Path:   entry.Path,
			Reason: models.SkipExcluded,
			Detail: "outside profile " + e.profile.Name,
		}}
	}

	return result{candidate: model.Score(entry, sig)}
}

// scoringConfig returns the configuration the model scores with: the
// snapshot itself, or a copy with the profile's weight and threshold
// overrides applied.
func (e *Engine) scoringConfig() *config.Config {
	if e.profile == nil || (e.profile.Weights == nil && e.profile.Thresholds == nil) {
		return e.cfg
	}

	cfg := *e.cfg
	if w := e.profile.Weights; w != nil {
		if w.Age != nil {
			cfg.AgeWeight = *w.Age
		}
		if w.Idle != nil {
			cfg.IdleWeight = *w.Idle
		}
		if w.Size != nil {
			cfg.SizeWeight = *w.Size
		}
	}
	if t := e.profile.Thresholds; t != nil {
		if t.Keep != nil {
			cfg.KeepThreshold = *t.Keep
		}
		if t.Archive != nil {
			cfg.ArchiveThreshold = *t.Archive
		}
	}
	return &cfg
}

// captureDiskUsage snapshots the filesystem behind a root. Failure is
// cosmetic and only logged.
func (e *Engine) captureDiskUsage(root string, report *models.ScanReport) {
	usage, err := disk.Usage(root)
	if err != nil {
		e.logger.Debug("Disk usage unavailable", zap.String("root", root), zap.Error(err))
		return
	}
	if report.Stats.DiskUsage == nil {
		report.Stats.DiskUsage = make(map[string]models.DiskUsage)
	}
	report.Stats.DiskUsage[root] = models.DiskUsage{
		TotalBytes:  usage.Total,
		FreeBytes:   usage.Free,
		UsedPercent: usage.UsedPercent,
	}
}
