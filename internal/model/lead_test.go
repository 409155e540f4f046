package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/sales-dashboard/pkg/salesapi"
)

func fptr(f float64) *float64 { return &f }

func TestFromAPI_Complete(t *testing.T) {
	l := FromAPI(salesapi.Lead{
		CompanyName:           "Acme Corp",
		QuoteValue:            50000,
		ItemCount:             5,
		ConversionDays:        12,
		LeadScore:             fptr(0.8),
		ConversionProbability: fptr(0.65),
		Industry:              "Manufacturing",
		Segment:               "Mid-Market",
		MaturityLevel:         "Established",
	})

	assert.Equal(t, "Acme Corp", l.CompanyName)
	assert.InDelta(t, 50000, l.QuoteValue, 0.001)
	assert.Equal(t, 5, l.ItemCount)
	assert.Equal(t, 12, l.ConversionDays)
	assert.InDelta(t, 0.8, l.LeadScore, 0.001)
	assert.InDelta(t, 0.65, l.ConversionProbability, 0.001)
	assert.Equal(t, "Manufacturing", l.Industry)
	assert.Equal(t, "Mid-Market", l.Segment)
	assert.Equal(t, "Established", l.MaturityLevel)
}

func TestFromAPI_AbsentScoresBecomeZero(t *testing.T) {
	l := FromAPI(salesapi.Lead{CompanyName: "Acme"})

	assert.Zero(t, l.LeadScore)
	assert.Zero(t, l.ConversionProbability)
}

func TestFromAPI_ClampsOutOfRangeScores(t *testing.T) {
	l := FromAPI(salesapi.Lead{
		CompanyName:           "Acme",
		LeadScore:             fptr(1.7),
		ConversionProbability: fptr(-0.3),
	})

	assert.InDelta(t, 1.0, l.LeadScore, 0.001)
	assert.Zero(t, l.ConversionProbability)
}

func TestFromAPI_NaNScoreBecomesZero(t *testing.T) {
	l := FromAPI(salesapi.Lead{
		CompanyName: "Acme",
		LeadScore:   fptr(math.NaN()),
	})

	assert.Zero(t, l.LeadScore)
}

func TestFromAPI_FloorsNegativeAmounts(t *testing.T) {
	l := FromAPI(salesapi.Lead{
		CompanyName:    "Acme",
		QuoteValue:     -100,
		ItemCount:      -2,
		ConversionDays: -7,
	})

	assert.Zero(t, l.QuoteValue)
	assert.Zero(t, l.ItemCount)
	assert.Zero(t, l.ConversionDays)
}

func TestFromAPI_ClassificationDefaults(t *testing.T) {
	l := FromAPI(salesapi.Lead{CompanyName: "Acme"})

	assert.Equal(t, UnknownIndustry, l.Industry)
	assert.Equal(t, GeneralSegment, l.Segment)
	assert.Equal(t, UnknownMaturity, l.MaturityLevel)
}

func TestFromAPIAll_PreservesOrder(t *testing.T) {
	out := FromAPIAll([]salesapi.Lead{
		{CompanyName: "First"},
		{CompanyName: "Second"},
		{CompanyName: "Third"},
	})

	assert.Len(t, out, 3)
	assert.Equal(t, "First", out[0].CompanyName)
	assert.Equal(t, "Second", out[1].CompanyName)
	assert.Equal(t, "Third", out[2].CompanyName)
}

func TestFromAPIAll_Empty(t *testing.T) {
	assert.Empty(t, FromAPIAll(nil))
}
