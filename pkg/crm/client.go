// Package crm provides JWT-authenticated Salesforce access for lead sync.
// Leads are read from the standard Lead object plus the org's AI custom
// fields, and scoring results are written back to the same fields.
package crm

import (
	"context"
	"fmt"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/sales-dashboard/pkg/salesapi"
)

// Custom field API names used by the sales org for AI enrichment.
const (
	FieldAIScore          = "AI_Score__c"
	FieldAIRecommendedUse = "AI_Recommended_Use_Case__c"
)

// Client defines the CRM operations used by the dashboard.
type Client interface {
	// FetchLeads queries open leads and returns them in wire shape.
	FetchLeads(ctx context.Context) ([]salesapi.Lead, error)
	// UpdateLeadAIData writes a model score and use-case recommendation back
	// to the lead record. Zero or empty values leave the corresponding
	// field untouched.
	UpdateLeadAIData(ctx context.Context, leadID string, score float64, useCase, note string) error
}

// ClientOption configures the CRM client.
type ClientOption func(*sfClient)

// WithRateLimit sets a per-second rate limit for Salesforce API calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) ClientOption {
	return func(c *sfClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// sfClient wraps the go-salesforce/v3 Salesforce struct.
//
// NOTE: The underlying go-salesforce/v3 library does not accept
// context.Context, so the ctx parameter only governs the rate limiter wait.
type sfClient struct {
	sf      *salesforce.Salesforce
	limiter *rate.Limiter
}

// NewClient creates a CRM Client wrapping the given go-salesforce instance.
func NewClient(sf *salesforce.Salesforce, opts ...ClientOption) Client {
	c := &sfClient{sf: sf}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *sfClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// leadRow is the SOQL projection for a lead record.
type leadRow struct {
	ID                    string   `json:"Id"`
	Company               string   `json:"Company"`
	Industry              string   `json:"Industry"`
	QuoteValue            float64  `json:"Quote_Value__c"`
	ItemCount             float64  `json:"Item_Count__c"`
	ConversionDays        float64  `json:"Conversion_Days__c"`
	Segment               string   `json:"Segment__c"`
	MaturityLevel         string   `json:"Maturity_Level__c"`
	AIScore               *float64 `json:"AI_Score__c"`
	ConversionProbability *float64 `json:"Conversion_Probability__c"`
}

const leadSOQL = `SELECT Id, Company, Industry, Quote_Value__c, Item_Count__c,
	Conversion_Days__c, Segment__c, Maturity_Level__c, AI_Score__c,
	Conversion_Probability__c
	FROM Lead WHERE IsConverted = false ORDER BY Quote_Value__c DESC NULLS LAST`

func (c *sfClient) FetchLeads(ctx context.Context) ([]salesapi.Lead, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "crm: rate limit")
	}

	var rows []leadRow
	if err := c.sf.Query(leadSOQL, &rows); err != nil {
		return nil, eris.Wrap(err, "crm: query leads")
	}

	leads := make([]salesapi.Lead, len(rows))
	for i, r := range rows {
		leads[i] = salesapi.Lead{
			CompanyName:           r.Company,
			QuoteValue:            r.QuoteValue,
			ItemCount:             int(r.ItemCount),
			ConversionDays:        int(r.ConversionDays),
			LeadScore:             r.AIScore,
			ConversionProbability: r.ConversionProbability,
			Industry:              r.Industry,
			Segment:               r.Segment,
			MaturityLevel:         r.MaturityLevel,
		}
	}
	return leads, nil
}

func (c *sfClient) UpdateLeadAIData(ctx context.Context, leadID string, score float64, useCase, note string) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "crm: rate limit")
	}

	fields := map[string]any{"Id": leadID}
	if score != 0 {
		fields[FieldAIScore] = score
	}
	if useCase != "" {
		fields[FieldAIRecommendedUse] = useCase
	}
	if note != "" {
		fields["Description"] = note
	}
	if len(fields) == 1 {
		return eris.New("crm: no fields to update")
	}
	if err := c.sf.UpdateOne("Lead", fields); err != nil {
		return eris.Wrap(err, fmt.Sprintf("crm: update lead %s", leadID))
	}
	return nil
}
