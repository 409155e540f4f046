package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sales-dashboard/internal/analytics"
	"github.com/sells-group/sales-dashboard/pkg/salesapi"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a lead profile with the remote model",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		value, _ := cmd.Flags().GetFloat64("value")
		items, _ := cmd.Flags().GetInt("items")
		days, _ := cmd.Flags().GetInt("days")
		name, _ := cmd.Flags().GetString("name")
		crmID, _ := cmd.Flags().GetString("crm-id")

		in := salesapi.LeadInput{
			QuoteValue:     value,
			ItemCount:      items,
			ConversionDays: days,
			CompanyName:    name,
		}

		pred, err := newAPIClient().PredictScore(ctx, in)
		if err != nil {
			return err
		}

		fmt.Printf("Lead score:             %.1f%% (%s)\n",
			pred.LeadScore*100, analytics.TierOf(pred.LeadScore))
		fmt.Printf("Conversion probability: %.1f%%\n", pred.ConversionProbability*100)

		if crmID != "" {
			client, err := newCRMClient()
			if err != nil {
				return err
			}
			if err := client.UpdateLeadAIData(ctx, crmID, pred.LeadScore, "", ""); err != nil {
				return err
			}
			zap.L().Info("wrote score to CRM",
				zap.String("lead_id", crmID),
				zap.Float64("score", pred.LeadScore),
			)
		}

		return nil
	},
}

func init() {
	scoreCmd.Flags().Float64("value", 0, "quote value in dollars")
	scoreCmd.Flags().Int("items", 0, "number of quoted items")
	scoreCmd.Flags().Int("days", 0, "days since first contact")
	scoreCmd.Flags().String("name", "", "company name")
	scoreCmd.Flags().String("crm-id", "", "Salesforce lead ID to write the score back to")
	_ = scoreCmd.MarkFlagRequired("value")
	_ = scoreCmd.MarkFlagRequired("items")
	rootCmd.AddCommand(scoreCmd)
}
