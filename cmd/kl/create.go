package main

import (
	"context"
	"fmt"

	"github.com/groblegark/kleads/internal/client"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create <first-name> <last-name> <email>",
	Short:   "Create a new lead",
	GroupID: "leads",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		phone, _ := cmd.Flags().GetString("phone")
		company, _ := cmd.Flags().GetString("company")
		city, _ := cmd.Flags().GetString("city")
		state, _ := cmd.Flags().GetString("state")
		source, _ := cmd.Flags().GetString("source")
		status, _ := cmd.Flags().GetString("status")
		score, _ := cmd.Flags().GetInt("score")
		value, _ := cmd.Flags().GetFloat64("value")
		qualified, _ := cmd.Flags().GetBool("qualified")

		req := &client.CreateLeadRequest{
			FirstName:   args[0],
			LastName:    args[1],
			Email:       args[2],
			Phone:       phone,
			Company:     company,
			City:        city,
			State:       state,
			Source:      source,
			Status:      status,
			Score:       score,
			LeadValue:   value,
			IsQualified: qualified,
		}

		lead, err := leadsClient.CreateLead(context.Background(), req)
		if err != nil {
			return fmt.Errorf("creating lead: %w", err)
		}

		if jsonOutput {
			printJSON(lead)
		} else {
			printLeadTable(lead)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().String("phone", "", "phone number")
	createCmd.Flags().StringP("company", "c", "", "company name")
	createCmd.Flags().String("city", "", "city")
	createCmd.Flags().String("state", "", "state")
	createCmd.Flags().StringP("source", "s", "website", "acquisition source (website, facebook_ads, google_ads, referral, events, other)")
	createCmd.Flags().String("status", "", "pipeline status (default: new)")
	createCmd.Flags().Int("score", 0, "lead score")
	createCmd.Flags().Float64("value", 0, "estimated lead value")
	createCmd.Flags().Bool("qualified", false, "mark the lead as qualified")
}
