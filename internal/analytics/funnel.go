package analytics

import "math"

// FunnelStage is one stage of the conversion funnel projection.
type FunnelStage struct {
	Stage      string `json:"stage"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// funnelStages are fixed stage-conversion rates. They are illustrative
// placeholders, not derived from data; replace them with measured
// conversion rates before trusting the funnel.
var funnelStages = []struct {
	name string
	rate float64
}{
	{"Total Leads", 1.00},
	{"Qualified", 0.70},
	{"Engaged", 0.45},
	{"Proposal", 0.25},
	{"Closed", 0.12},
}

// Funnel projects a total lead count through the fixed stage rates.
// Counts are floor(total x rate).
func Funnel(total int) []FunnelStage {
	if total < 0 {
		total = 0
	}
	out := make([]FunnelStage, 0, len(funnelStages))
	for _, s := range funnelStages {
		out = append(out, FunnelStage{
			Stage:      s.name,
			Count:      int(math.Floor(float64(total) * s.rate)),
			Percentage: int(s.rate * 100),
		})
	}
	return out
}
