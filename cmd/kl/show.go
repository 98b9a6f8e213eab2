package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show a lead",
	GroupID: "leads",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lead, err := leadsClient.GetLead(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching lead: %w", err)
		}

		if jsonOutput {
			printJSON(lead)
		} else {
			printLeadTable(lead)
		}
		return nil
	},
}
