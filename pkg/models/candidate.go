package models

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Suggestion is the proposed disposition category for a candidate.
type Suggestion string

const (
	SuggestKeep    Suggestion = "keep"
	SuggestArchive Suggestion = "archive"
	SuggestDelete  Suggestion = "delete"
)

// Rank orders suggestion categories for ranking: delete first, keep last.
func (s Suggestion) Rank() int {
	switch s {
	case SuggestDelete:
		return 0
	case SuggestArchive:
		return 1
	case SuggestKeep:
		return 2
	default:
		return 3
	}
}

// DispositionState is the lifecycle state of a candidate with respect to
// user and engine action.
type DispositionState string

const (
	DispositionSuggested DispositionState = "suggested"
	DispositionConfirmed DispositionState = "confirmed"
	DispositionExecuted  DispositionState = "executed"
	DispositionRejected  DispositionState = "rejected"
	DispositionFailed    DispositionState = "failed"
)

// Terminal reports whether no further transition is possible from the
// state. Failed is terminal only after the automatic retry is spent, which
// the disposition gate tracks per candidate.
func (d DispositionState) Terminal() bool {
	return d == DispositionExecuted || d == DispositionRejected
}

// Candidate pairs a scanned file with its signals, score and suggestion.
// Created once by the scoring model; only the disposition fields change
// afterwards, and only through the disposition gate.
type Candidate struct {
	ID         string     `json:"id" yaml:"id"`
	Entry      *FileEntry `json:"entry" yaml:"entry"`
	Signal     Signal     `json:"signal" yaml:"signal"`
	Score      float64    `json:"score" yaml:"score"`           // [0.0, 1.0]
	Suggestion Suggestion `json:"suggestion" yaml:"suggestion"`
	Confidence float64    `json:"confidence" yaml:"confidence"` // [0.0, 1.0]

	Disposition      DispositionState `json:"disposition" yaml:"disposition"`
	DispositionNote  string           `json:"disposition_note,omitempty" yaml:"disposition_note,omitempty"`
	ArchivedLocation string           `json:"archived_location,omitempty" yaml:"archived_location,omitempty"`
}

// CandidateID derives the stable identifier for a canonical path.
func CandidateID(path string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(path))
}
