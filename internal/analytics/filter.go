package analytics

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sales-dashboard/internal/model"
)

// ScoreBand selects a tier predicate for filtering.
type ScoreBand string

const (
	BandAll    ScoreBand = "all"
	BandHigh   ScoreBand = "high"
	BandMedium ScoreBand = "medium"
	BandLow    ScoreBand = "low"
)

// ParseBand validates a band string from user input.
func ParseBand(s string) (ScoreBand, error) {
	switch ScoreBand(strings.ToLower(s)) {
	case BandAll, "":
		return BandAll, nil
	case BandHigh:
		return BandHigh, nil
	case BandMedium:
		return BandMedium, nil
	case BandLow:
		return BandLow, nil
	default:
		return "", eris.Errorf("filter: unknown score band %q (want all, high, medium, or low)", s)
	}
}

// Filter returns the leads matching both predicates: a case-insensitive
// substring match on company name (empty term passes all) AND a score-band
// membership test (BandAll passes all). The predicates commute and the
// function is idempotent over its own output.
func Filter(leads []model.Lead, term string, band ScoreBand) []model.Lead {
	term = strings.ToLower(term)

	out := make([]model.Lead, 0, len(leads))
	for _, l := range leads {
		if term != "" && !strings.Contains(strings.ToLower(l.CompanyName), term) {
			continue
		}
		if !bandMatches(band, l.LeadScore) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func bandMatches(band ScoreBand, score float64) bool {
	switch band {
	case BandHigh:
		return TierOf(score) == TierHigh
	case BandMedium:
		return TierOf(score) == TierMedium
	case BandLow:
		return TierOf(score) == TierLow
	default:
		return true
	}
}
