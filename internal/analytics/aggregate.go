// Package analytics derives summary statistics, distributions, rankings, and
// funnel projections from a collection of lead records. Every function is
// pure and total: no I/O, no side effects, and an empty collection yields
// zero values instead of a division-by-zero panic.
package analytics

import (
	"math"
	"sort"

	"github.com/sells-group/sales-dashboard/internal/model"
)

// Summary holds the dashboard KPI row.
type Summary struct {
	TotalLeads     int     `json:"total_leads"`
	HighValueLeads int     `json:"high_value_leads"`
	AvgLeadScore   float64 `json:"avg_lead_score"`
	PipelineValue  float64 `json:"pipeline_value"`
	AvgDealSize    float64 `json:"avg_deal_size"`
}

// Summarize computes the KPI summary. High-value means score > 0.7. Averages
// are 0 for an empty collection.
func Summarize(leads []model.Lead) Summary {
	s := Summary{TotalLeads: len(leads)}

	for _, l := range leads {
		if l.LeadScore > highTierFloor {
			s.HighValueLeads++
		}
		s.AvgLeadScore += l.LeadScore
		s.PipelineValue += l.QuoteValue
	}

	if s.TotalLeads > 0 {
		s.AvgLeadScore /= float64(s.TotalLeads)
		s.AvgDealSize = s.PipelineValue / float64(s.TotalLeads)
	}
	return s
}

// HistogramBucket is one band of the five-band score histogram.
type HistogramBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// histogramBands are the five fixed score bands. Each band includes its lower
// bound and excludes its upper bound; the top band also includes 1.0, so a
// score of exactly 0.2 lands in the second band and 1.0 in the fifth.
var histogramBands = []struct {
	label string
	lo    float64
	hi    float64
}{
	{"0-20%", 0.0, 0.2},
	{"20-40%", 0.2, 0.4},
	{"40-60%", 0.4, 0.6},
	{"60-80%", 0.6, 0.8},
	{"80-100%", 0.8, 1.0},
}

// Histogram partitions leads into the five fixed score bands.
func Histogram(leads []model.Lead) []HistogramBucket {
	out := make([]HistogramBucket, len(histogramBands))
	for i, b := range histogramBands {
		out[i].Range = b.label
	}

	for _, l := range leads {
		for i, b := range histogramBands {
			last := i == len(histogramBands)-1
			if l.LeadScore >= b.lo && (l.LeadScore < b.hi || (last && l.LeadScore <= b.hi)) {
				out[i].Count++
				break
			}
		}
	}
	return out
}

// Tier is one of the three summary-view score tiers. Its boundary semantics
// deliberately differ from the five-band histogram: the two schemes serve
// independent views and must not be unified.
type Tier string

const (
	TierHigh   Tier = "high"   // score > 0.7
	TierMedium Tier = "medium" // 0.4 <= score <= 0.7
	TierLow    Tier = "low"    // score < 0.4
)

const (
	highTierFloor   = 0.7
	mediumTierFloor = 0.4
)

// TierOf classifies a score. Both tier boundaries are inclusive on the
// Medium side: 0.4 and 0.7 are Medium.
func TierOf(score float64) Tier {
	switch {
	case score > highTierFloor:
		return TierHigh
	case score >= mediumTierFloor:
		return TierMedium
	default:
		return TierLow
	}
}

// Distribution holds the two-tier lead counts.
type Distribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Tiers computes the High/Medium/Low distribution.
func Tiers(leads []model.Lead) Distribution {
	var d Distribution
	for _, l := range leads {
		switch TierOf(l.LeadScore) {
		case TierHigh:
			d.High++
		case TierMedium:
			d.Medium++
		default:
			d.Low++
		}
	}
	return d
}

// RankedLead is one row of the top-N ranking.
type RankedLead struct {
	Name       string  `json:"name"`     // truncated to 20 characters
	ScorePct   float64 `json:"score"`    // percentage, one decimal
	QuoteValue float64 `json:"value"`
}

// maxRankedNameLen bounds chart labels.
const maxRankedNameLen = 20

// TopLeads ranks leads descending by score, ties broken by original input
// order, and returns the first n projected rows.
func TopLeads(leads []model.Lead, n int) []RankedLead {
	sorted := make([]model.Lead, len(leads))
	copy(sorted, leads)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LeadScore > sorted[j].LeadScore
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	if n < 0 {
		n = 0
	}

	out := make([]RankedLead, 0, n)
	for _, l := range sorted[:n] {
		name := l.CompanyName
		if len(name) > maxRankedNameLen {
			name = name[:maxRankedNameLen]
		}
		out = append(out, RankedLead{
			Name:       name,
			ScorePct:   math.Round(l.LeadScore*1000) / 10,
			QuoteValue: l.QuoteValue,
		})
	}
	return out
}

// TierRevenue holds quote-value sums per tier, expressed in thousands.
type TierRevenue struct {
	HighK   float64 `json:"high_k"`
	MediumK float64 `json:"medium_k"`
	LowK    float64 `json:"low_k"`
}

// RevenueByTier rolls up quote value per score tier, in thousands.
func RevenueByTier(leads []model.Lead) TierRevenue {
	var r TierRevenue
	for _, l := range leads {
		switch TierOf(l.LeadScore) {
		case TierHigh:
			r.HighK += l.QuoteValue
		case TierMedium:
			r.MediumK += l.QuoteValue
		default:
			r.LowK += l.QuoteValue
		}
	}
	r.HighK /= 1000
	r.MediumK /= 1000
	r.LowK /= 1000
	return r
}

// SegmentStats is the per-segment rollup row.
type SegmentStats struct {
	Count         int     `json:"count"`
	PipelineValue float64 `json:"pipeline_value"`
	AvgLeadScore  float64 `json:"avg_lead_score"`
}

// SegmentRollup aggregates leads by their assigned segment. Normalization
// guarantees every lead carries a segment, so the map key is never empty.
func SegmentRollup(leads []model.Lead) map[string]SegmentStats {
	out := make(map[string]SegmentStats)
	totals := make(map[string]float64)

	for _, l := range leads {
		s := out[l.Segment]
		s.Count++
		s.PipelineValue += l.QuoteValue
		out[l.Segment] = s
		totals[l.Segment] += l.LeadScore
	}

	for seg, s := range out {
		s.AvgLeadScore = totals[seg] / float64(s.Count)
		out[seg] = s
	}
	return out
}
