package model

import (
	"github.com/sells-group/sales-dashboard/pkg/salesapi"
)

// MatchView is the display form of a remotely computed use-case match. The
// match itself is passed through unchanged; this type only adds display
// conveniences. No matching logic lives in this repository.
type MatchView struct {
	salesapi.MatchResult
}

// PresentMatch wraps a match result for display.
func PresentMatch(m salesapi.MatchResult) MatchView {
	return MatchView{MatchResult: m}
}

// SummarySegments returns at most the first two relevant segments of the
// recommended use case, for compact summary rendering.
func (v MatchView) SummarySegments() []string {
	segs := v.RecommendedUseCase.RelevantSegments
	if len(segs) > 2 {
		segs = segs[:2]
	}
	return segs
}

// UseCaseByID finds a use case in a catalog. Returns nil when absent.
func UseCaseByID(catalog []salesapi.UseCase, id string) *salesapi.UseCase {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	return nil
}
