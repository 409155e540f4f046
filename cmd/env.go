package main

import (
	"context"
	"os"
	"time"

	gosf "github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sales-dashboard/internal/leadfile"
	"github.com/sells-group/sales-dashboard/internal/model"
	"github.com/sells-group/sales-dashboard/pkg/crm"
	"github.com/sells-group/sales-dashboard/pkg/salesapi"
)

// newAPIClient builds the backend client from config.
func newAPIClient() salesapi.Client {
	return salesapi.NewClient(cfg.API.BaseURL,
		salesapi.WithTimeout(time.Duration(cfg.API.TimeoutSecs)*time.Second),
	)
}

// newCRMClient builds a JWT-authenticated Salesforce client from config.
func newCRMClient() (crm.Client, error) {
	if err := cfg.Validate("crm"); err != nil {
		return nil, err
	}

	pemData, err := os.ReadFile(cfg.CRM.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := gosf.Init(gosf.Creds{
		Domain:         cfg.CRM.LoginURL,
		Username:       cfg.CRM.Username,
		ConsumerKey:    cfg.CRM.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "salesforce auth")
	}

	return crm.NewClient(sf, crm.WithRateLimit(cfg.CRM.RateLimitRPS)), nil
}

// loadLeads resolves the lead source in priority order: an explicit file,
// the CRM when enabled, otherwise the scoring backend. Records are
// normalized on the way in.
func loadLeads(ctx context.Context, file string) ([]model.Lead, error) {
	switch {
	case file != "":
		leads, err := leadfile.Load(file)
		if err != nil {
			return nil, err
		}
		zap.L().Debug("loaded leads from file",
			zap.String("file", file),
			zap.Int("count", len(leads)),
		)
		return leads, nil

	case cfg.CRM.Enabled:
		client, err := newCRMClient()
		if err != nil {
			return nil, err
		}
		wire, err := client.FetchLeads(ctx)
		if err != nil {
			return nil, err
		}
		return model.FromAPIAll(wire), nil

	default:
		wire, err := newAPIClient().Leads(ctx)
		if err != nil {
			return nil, err
		}
		return model.FromAPIAll(wire), nil
	}
}
