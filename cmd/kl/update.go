package main

import (
	"context"
	"fmt"
	"time"

	"github.com/groblegark/kleads/internal/client"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update a lead",
	GroupID: "leads",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.UpdateLeadRequest{}
		changed := false

		strFlag := func(flag string, dst **string) {
			if cmd.Flags().Changed(flag) {
				v, _ := cmd.Flags().GetString(flag)
				*dst = &v
				changed = true
			}
		}
		strFlag("first-name", &req.FirstName)
		strFlag("last-name", &req.LastName)
		strFlag("email", &req.Email)
		strFlag("phone", &req.Phone)
		strFlag("company", &req.Company)
		strFlag("city", &req.City)
		strFlag("state", &req.State)
		strFlag("source", &req.Source)
		strFlag("status", &req.Status)

		if cmd.Flags().Changed("score") {
			v, _ := cmd.Flags().GetInt("score")
			req.Score = &v
			changed = true
		}
		if cmd.Flags().Changed("value") {
			v, _ := cmd.Flags().GetFloat64("value")
			req.LeadValue = &v
			changed = true
		}
		if cmd.Flags().Changed("qualified") {
			v, _ := cmd.Flags().GetBool("qualified")
			req.IsQualified = &v
			changed = true
		}
		if touch, _ := cmd.Flags().GetBool("touch"); touch {
			now := time.Now().UTC()
			req.LastActivityAt = &now
			changed = true
		}

		if !changed {
			return fmt.Errorf("no changes specified")
		}

		lead, err := leadsClient.UpdateLead(context.Background(), args[0], req)
		if err != nil {
			return fmt.Errorf("updating lead: %w", err)
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
	updateCmd.Flags().String("first-name", "", "first name")
	updateCmd.Flags().String("last-name", "", "last name")
	updateCmd.Flags().String("email", "", "email address")
	updateCmd.Flags().String("phone", "", "phone number")
	updateCmd.Flags().StringP("company", "c", "", "company name")
	updateCmd.Flags().String("city", "", "city")
	updateCmd.Flags().String("state", "", "state")
	updateCmd.Flags().StringP("source", "s", "", "acquisition source")
	updateCmd.Flags().String("status", "", "pipeline status")
	updateCmd.Flags().Int("score", 0, "lead score")
	updateCmd.Flags().Float64("value", 0, "estimated lead value")
	updateCmd.Flags().Bool("qualified", false, "qualification (--qualified or --qualified=false)")
	updateCmd.Flags().Bool("touch", false, "set last activity to now")
}
