// Package model defines the normalized lead record and display contracts
// shared across the dashboard core.
package model

import (
	"github.com/sells-group/sales-dashboard/pkg/salesapi"
)

// Defaults applied when a classification field is absent on the wire.
const (
	UnknownIndustry = "Unknown"
	UnknownMaturity = "Unknown"
	GeneralSegment  = "General"
)

// Lead is a fully-defaulted lead record. Every field is guaranteed present:
// normalization happens exactly once, at the boundary, so aggregation and
// filtering never re-check for absent values.
type Lead struct {
	CompanyName           string  `json:"company_name"`
	QuoteValue            float64 `json:"quote_value"`
	ItemCount             int     `json:"item_count"`
	ConversionDays        int     `json:"conversion_days"`
	LeadScore             float64 `json:"lead_score"`
	ConversionProbability float64 `json:"conversion_probability"`
	Industry              string  `json:"industry"`
	Segment               string  `json:"segment"`
	MaturityLevel         string  `json:"maturity_level"`
}

// FromAPI normalizes a wire-format lead into the internal record: absent
// scores become 0, out-of-range scores are clamped to [0,1], negative
// monetary and count fields are floored at 0, and absent classification
// fields get their display defaults.
func FromAPI(in salesapi.Lead) Lead {
	l := Lead{
		CompanyName:           in.CompanyName,
		QuoteValue:            in.QuoteValue,
		ItemCount:             in.ItemCount,
		ConversionDays:        in.ConversionDays,
		LeadScore:             clamp01(deref(in.LeadScore)),
		ConversionProbability: clamp01(deref(in.ConversionProbability)),
		Industry:              in.Industry,
		Segment:               in.Segment,
		MaturityLevel:         in.MaturityLevel,
	}

	if l.QuoteValue < 0 {
		l.QuoteValue = 0
	}
	if l.ItemCount < 0 {
		l.ItemCount = 0
	}
	if l.ConversionDays < 0 {
		l.ConversionDays = 0
	}
	if l.Industry == "" {
		l.Industry = UnknownIndustry
	}
	if l.Segment == "" {
		l.Segment = GeneralSegment
	}
	if l.MaturityLevel == "" {
		l.MaturityLevel = UnknownMaturity
	}

	return l
}

// FromAPIAll normalizes a collection of wire-format leads.
func FromAPIAll(in []salesapi.Lead) []Lead {
	out := make([]Lead, 0, len(in))
	for _, l := range in {
		out = append(out, FromAPI(l))
	}
	return out
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// clamp01 snaps out-of-range scores to the nearest bound. Malformed input
// must never crash an aggregation.
func clamp01(f float64) float64 {
	switch {
	case f != f: // NaN
		return 0
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
