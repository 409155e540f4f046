package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sales-dashboard/internal/campaign"
	"github.com/sells-group/sales-dashboard/internal/mail"
	"github.com/sells-group/sales-dashboard/internal/model"
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Generate and send a personalized outreach email",
	Long:  "Runs one campaign session: selects a lead, generates an email through the backend model, and optionally delivers it via the backend or directly over SMTP.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		leadName, _ := cmd.Flags().GetString("lead")
		email, _ := cmd.Flags().GetString("email")
		subject, _ := cmd.Flags().GetString("subject")
		file, _ := cmd.Flags().GetString("file")
		send, _ := cmd.Flags().GetBool("send")
		useSMTP, _ := cmd.Flags().GetBool("smtp")

		if err := cfg.Validate("campaign"); err != nil {
			return err
		}

		lead, err := findLead(ctx, leadName, file)
		if err != nil {
			return err
		}
		if lead.LeadScore < cfg.Campaign.MinSelectScore {
			zap.L().Warn("lead is below the campaign score threshold",
				zap.String("company", lead.CompanyName),
				zap.Float64("score", lead.LeadScore),
				zap.Float64("threshold", cfg.Campaign.MinSelectScore),
			)
		}

		api := newAPIClient()
		var sender campaign.Sender = campaign.RemoteSender{API: api}
		if useSMTP {
			sender = mail.NewSMTPSender(
				cfg.SMTP.Host, cfg.SMTP.Port,
				cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From,
			)
		}

		wf := campaign.New(campaign.RemoteGenerator{API: api}, sender,
			campaign.WithSentWindow(time.Duration(cfg.Campaign.SentWindowSecs)*time.Second),
		)
		defer wf.Close()

		if err := wf.SelectLead(lead); err != nil {
			return err
		}
		wf.SetCustomerEmail(email)
		if subject != "" {
			wf.SetSubject(subject)
		} else if cfg.Campaign.Subject != "" {
			wf.SetSubject(cfg.Campaign.Subject)
		}

		fmt.Printf("Generating email for %s...\n", lead.CompanyName)
		if err := wf.RequestGeneration(ctx); err != nil {
			return err
		}

		draft := wf.Draft()
		fmt.Printf("\nSubject: %s\n\n%s\n", draft.Subject, draft.GeneratedBody)

		if !send {
			return nil
		}

		fmt.Printf("\nSending to %s...\n", email)
		if err := wf.RequestSend(ctx); err != nil {
			return err
		}
		fmt.Println("Email sent.")
		return nil
	},
}

// findLead resolves --lead against the configured lead source by
// case-insensitive company name.
func findLead(ctx context.Context, name, file string) (model.Lead, error) {
	leads, err := loadLeads(ctx, file)
	if err != nil {
		return model.Lead{}, err
	}

	for _, l := range leads {
		if strings.EqualFold(l.CompanyName, name) {
			return l, nil
		}
	}
	return model.Lead{}, eris.Errorf("campaign: lead %q not found", name)
}

func init() {
	campaignCmd.Flags().String("lead", "", "company name of the lead to target")
	campaignCmd.Flags().String("email", "", "recipient email address")
	campaignCmd.Flags().String("subject", "", "email subject (default from config)")
	campaignCmd.Flags().String("file", "", "load leads from a CSV/XLSX file instead of the backend")
	campaignCmd.Flags().Bool("send", false, "deliver the email after generating it")
	campaignCmd.Flags().Bool("smtp", false, "deliver directly over SMTP instead of through the backend")
	_ = campaignCmd.MarkFlagRequired("lead")
	_ = campaignCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(campaignCmd)
}
