// Package scoring combines normalized signals into a cleanup-worthiness
// score, a suggestion category and a confidence level.
package scoring

import (
	"time"

	"github.com/mesaifali/trashdoctor/internal/config"
	"github.com/mesaifali/trashdoctor/pkg/models"
)

// saturationDays is where the age/idle curve reaches 1.0: a year-old or
// year-idle file scores maximally on that axis.
const saturationDays = 365

// activeDirWindow marks a parent directory as "might still be in use":
// confidence drops for files inside it, the suggestion does not change.
const activeDirWindow = time.Hour

// Confidence multipliers. They only annotate; category mapping depends on
// the score alone.
const (
	penaltyUnreliableAtime = 0.70
	penaltySymlink         = 0.60
	penaltyActiveDir       = 0.70
	penaltyOutsideRoot     = 0.80
)

// Model scores entries against one configuration snapshot. Weights are
// normalized at construction so the score stays within [0,1] for any
// configured weighting.
type Model struct {
	ageWeight        float64
	idleWeight       float64
	sizeWeight       float64
	keepThreshold    float64
	archiveThreshold float64

	// now is the scan's reference time, fixed for determinism.
	now time.Time
}

// NewModel creates a scoring model from the scan configuration.
func NewModel(cfg *config.Config, now time.Time) *Model {
	sum := cfg.AgeWeight + cfg.IdleWeight + cfg.SizeWeight
	return &Model{
		ageWeight:        cfg.AgeWeight / sum,
		idleWeight:       cfg.IdleWeight / sum,
		sizeWeight:       cfg.SizeWeight / sum,
		keepThreshold:    cfg.KeepThreshold,
		archiveThreshold: cfg.ArchiveThreshold,
		now:              now,
	}
}

// Score turns an entry and its signal into a Candidate in the Suggested
// state. score = wAge*f(age) + wIdle*f(idle) + wSize*g(class), with f
// saturating at a year and g monotonic in size class.
func (m *Model) Score(entry *models.FileEntry, sig models.Signal) *models.Candidate {
	score := m.ageWeight*saturate(sig.AgeDays) +
		m.idleWeight*saturate(sig.IdleDays) +
		m.sizeWeight*sizeValue(sig.Class)
	if score > 1 {
		score = 1
	}

	return &models.Candidate{
		ID:          models.CandidateID(entry.Path),
		Entry:       entry,
		Signal:      sig,
		Score:       score,
		Suggestion:  m.suggest(score),
		Confidence:  m.confidence(entry, sig),
		Disposition: models.DispositionSuggested,
	}
}

// suggest maps the score onto a category through the configured
// thresholds. Delete is never reached below the archive threshold; the
// model has no way to escalate past the caller's configuration.
func (m *Model) suggest(score float64) models.Suggestion {
	switch {
	case score < m.keepThreshold:
		return models.SuggestKeep
	case score < m.archiveThreshold:
		return models.SuggestArchive
	default:
		return models.SuggestDelete
	}
}

// confidence starts at 1.0 and shrinks for every signal that makes the
// staleness evidence weaker. The disposition gate uses low confidence to
// add confirmation friction; it never changes the suggestion here.
func (m *Model) confidence(entry *models.FileEntry, sig models.Signal) float64 {
	conf := 1.0

	if !sig.AtimeReliable {
		conf *= penaltyUnreliableAtime
	}
	if entry.IsSymlink {
		conf *= penaltySymlink
	}
	if entry.OutsideRoot {
		conf *= penaltyOutsideRoot
	}
	if !entry.ParentModTime.IsZero() && m.now.Sub(entry.ParentModTime) < activeDirWindow {
		conf *= penaltyActiveDir
	}

	return conf
}

// saturate maps a day count onto [0,1], linear up to a year.
func saturate(days int) float64 {
	if days <= 0 {
		return 0
	}
	if days >= saturationDays {
		return 1
	}
	return float64(days) / saturationDays
}

// sizeValue maps a size class onto [0,1] monotonically.
func sizeValue(class models.SizeClass) float64 {
	return float64(class.Rank()) / 4
}
