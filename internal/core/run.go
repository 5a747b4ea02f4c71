package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesaifali/trashdoctor/internal/config"
	"github.com/mesaifali/trashdoctor/internal/disposition"
	"github.com/mesaifali/trashdoctor/internal/ranking"
	"github.com/mesaifali/trashdoctor/pkg/models"
)

// ScanRun is the live result of one scan: the report, the ranked
// candidate set and the disposition gate controlling what may happen to
// each candidate. A new scan produces a new run; runs are never merged.
type ScanRun struct {
	cfg    *config.Config
	report *models.ScanReport
	ranker *ranking.Ranker
	gate   *disposition.Gate
	logger *zap.Logger
}

func newScanRun(cfg *config.Config, report *models.ScanReport, ranker *ranking.Ranker, gate *disposition.Gate, logger *zap.Logger) *ScanRun {
	return &ScanRun{cfg: cfg, report: report, ranker: ranker, gate: gate, logger: logger}
}

// Report returns the scan report.
func (r *ScanRun) Report() *models.ScanReport {
	return r.report
}

// ListCandidates returns candidates filtered, sorted and paged per the
// options.
func (r *ScanRun) ListCandidates(opts ranking.ListOptions) []*models.Candidate {
	return r.ranker.List(opts)
}

// Summary returns the aggregate statistics of the run.
func (r *ScanRun) Summary() models.ScanStatistics {
	return r.report.Stats
}

// Top returns the k highest-priority candidates with the given suggestion.
func (r *ScanRun) Top(suggestion models.Suggestion, k int) []*models.Candidate {
	return r.ranker.TopK(suggestion, k)
}

// Largest returns the k biggest candidates.
func (r *ScanRun) Largest(k int) []*models.Candidate {
	return r.ranker.Largest(k)
}

// Oldest returns the k candidates with the highest age.
func (r *ScanRun) Oldest(k int) []*models.Candidate {
	return r.ranker.Oldest(k)
}

// Candidate returns the candidate with the given ID, or nil.
func (r *ScanRun) Candidate(id string) *models.Candidate {
	return r.report.CandidateByID(id)
}

// Confirm approves a suggested candidate for execution.
func (r *ScanRun) Confirm(id string) error {
	return r.gate.Confirm(id)
}

// Reject dismisses a suggested candidate.
func (r *ScanRun) Reject(id string) error {
	return r.gate.Reject(id)
}

// Execute performs the confirmed action for a candidate.
func (r *ScanRun) Execute(ctx context.Context, id string) error {
	return r.gate.Execute(ctx, id)
}
