package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sales-dashboard/internal/model"
)

func lead(name string, score, value float64) model.Lead {
	return model.Lead{
		CompanyName: name,
		LeadScore:   score,
		QuoteValue:  value,
		Segment:     model.GeneralSegment,
	}
}

func TestSummarize(t *testing.T) {
	leads := []model.Lead{
		lead("A", 0.9, 100000),
		lead("B", 0.75, 50000),
		lead("C", 0.5, 30000),
		lead("D", 0.2, 20000),
	}

	s := Summarize(leads)

	assert.Equal(t, 4, s.TotalLeads)
	assert.Equal(t, 2, s.HighValueLeads)
	assert.InDelta(t, 0.5875, s.AvgLeadScore, 0.0001)
	assert.InDelta(t, 200000, s.PipelineValue, 0.001)
	assert.InDelta(t, 50000, s.AvgDealSize, 0.001)
}

func TestSummarize_ExactThresholdNotHighValue(t *testing.T) {
	s := Summarize([]model.Lead{lead("A", 0.7, 1000)})
	assert.Zero(t, s.HighValueLeads)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.TotalLeads)
	assert.Zero(t, s.HighValueLeads)
	assert.Zero(t, s.AvgLeadScore)
	assert.Zero(t, s.PipelineValue)
	assert.Zero(t, s.AvgDealSize)
}

func TestHistogram_BandLabels(t *testing.T) {
	h := Histogram(nil)

	require.Len(t, h, 5)
	assert.Equal(t, "0-20%", h[0].Range)
	assert.Equal(t, "20-40%", h[1].Range)
	assert.Equal(t, "40-60%", h[2].Range)
	assert.Equal(t, "60-80%", h[3].Range)
	assert.Equal(t, "80-100%", h[4].Range)
}

func TestHistogram_BoundaryLandsInUpperBand(t *testing.T) {
	h := Histogram([]model.Lead{lead("A", 0.2, 0)})

	assert.Zero(t, h[0].Count)
	assert.Equal(t, 1, h[1].Count)
}

func TestHistogram_TopBandIncludesOne(t *testing.T) {
	h := Histogram([]model.Lead{lead("A", 1.0, 0)})
	assert.Equal(t, 1, h[4].Count)
}

func TestHistogram_EveryLeadCountedOnce(t *testing.T) {
	leads := []model.Lead{
		lead("A", 0.0, 0),
		lead("B", 0.19, 0),
		lead("C", 0.4, 0),
		lead("D", 0.79, 0),
		lead("E", 0.8, 0),
		lead("F", 1.0, 0),
	}

	h := Histogram(leads)

	total := 0
	for _, b := range h {
		total += b.Count
	}
	assert.Equal(t, len(leads), total)
	assert.Equal(t, 2, h[0].Count)
	assert.Equal(t, 1, h[2].Count)
	assert.Equal(t, 1, h[3].Count)
	assert.Equal(t, 2, h[4].Count)
}

func TestTierOf_Boundaries(t *testing.T) {
	assert.Equal(t, TierLow, TierOf(0.0))
	assert.Equal(t, TierLow, TierOf(0.39))
	assert.Equal(t, TierMedium, TierOf(0.4))
	assert.Equal(t, TierMedium, TierOf(0.55))
	assert.Equal(t, TierMedium, TierOf(0.7))
	assert.Equal(t, TierHigh, TierOf(0.71))
	assert.Equal(t, TierHigh, TierOf(1.0))
}

func TestTiers(t *testing.T) {
	d := Tiers([]model.Lead{
		lead("A", 0.9, 0),
		lead("B", 0.7, 0),
		lead("C", 0.4, 0),
		lead("D", 0.1, 0),
	})

	assert.Equal(t, 1, d.High)
	assert.Equal(t, 2, d.Medium)
	assert.Equal(t, 1, d.Low)
}

func TestTopLeads_OrderAndProjection(t *testing.T) {
	leads := []model.Lead{
		lead("Low", 0.3, 10000),
		lead("Best", 0.95, 80000),
		lead("Mid", 0.6, 40000),
	}

	top := TopLeads(leads, 2)

	require.Len(t, top, 2)
	assert.Equal(t, "Best", top[0].Name)
	assert.InDelta(t, 95.0, top[0].ScorePct, 0.001)
	assert.InDelta(t, 80000, top[0].QuoteValue, 0.001)
	assert.Equal(t, "Mid", top[1].Name)
}

func TestTopLeads_TiesKeepInputOrder(t *testing.T) {
	leads := []model.Lead{
		lead("First", 0.5, 0),
		lead("Second", 0.5, 0),
	}

	top := TopLeads(leads, 2)

	require.Len(t, top, 2)
	assert.Equal(t, "First", top[0].Name)
	assert.Equal(t, "Second", top[1].Name)
}

func TestTopLeads_TruncatesLongNames(t *testing.T) {
	top := TopLeads([]model.Lead{
		lead("Extremely Long Company Name Incorporated", 0.9, 0),
	}, 1)

	require.Len(t, top, 1)
	assert.Len(t, top[0].Name, 20)
	assert.Equal(t, "Extremely Long Compa", top[0].Name)
}

func TestTopLeads_ScorePctOneDecimal(t *testing.T) {
	top := TopLeads([]model.Lead{lead("A", 0.8765, 0)}, 1)

	require.Len(t, top, 1)
	assert.InDelta(t, 87.7, top[0].ScorePct, 0.001)
}

func TestTopLeads_NLargerThanCollection(t *testing.T) {
	top := TopLeads([]model.Lead{lead("A", 0.5, 0)}, 10)
	assert.Len(t, top, 1)
}

func TestTopLeads_DoesNotMutateInput(t *testing.T) {
	leads := []model.Lead{
		lead("Z", 0.1, 0),
		lead("A", 0.9, 0),
	}

	_ = TopLeads(leads, 2)

	assert.Equal(t, "Z", leads[0].CompanyName)
	assert.Equal(t, "A", leads[1].CompanyName)
}

func TestRevenueByTier_Thousands(t *testing.T) {
	r := RevenueByTier([]model.Lead{
		lead("A", 0.9, 120000),
		lead("B", 0.8, 30000),
		lead("C", 0.5, 45000),
		lead("D", 0.2, 10000),
	})

	assert.InDelta(t, 150, r.HighK, 0.001)
	assert.InDelta(t, 45, r.MediumK, 0.001)
	assert.InDelta(t, 10, r.LowK, 0.001)
}

func TestRevenueByTier_Empty(t *testing.T) {
	r := RevenueByTier(nil)

	assert.Zero(t, r.HighK)
	assert.Zero(t, r.MediumK)
	assert.Zero(t, r.LowK)
}

func TestSegmentRollup(t *testing.T) {
	leads := []model.Lead{
		{CompanyName: "A", Segment: "Enterprise", LeadScore: 0.8, QuoteValue: 100000},
		{CompanyName: "B", Segment: "Enterprise", LeadScore: 0.6, QuoteValue: 50000},
		{CompanyName: "C", Segment: "SMB", LeadScore: 0.4, QuoteValue: 10000},
	}

	rollup := SegmentRollup(leads)

	require.Len(t, rollup, 2)
	ent := rollup["Enterprise"]
	assert.Equal(t, 2, ent.Count)
	assert.InDelta(t, 150000, ent.PipelineValue, 0.001)
	assert.InDelta(t, 0.7, ent.AvgLeadScore, 0.0001)

	smb := rollup["SMB"]
	assert.Equal(t, 1, smb.Count)
	assert.InDelta(t, 0.4, smb.AvgLeadScore, 0.0001)
}
