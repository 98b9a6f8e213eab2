package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Short:   "Delete a lead",
	GroupID: "leads",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := leadsClient.DeleteLead(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting lead: %w", err)
		}
		if jsonOutput {
			printJSON(map[string]string{"deleted": args[0]})
		} else {
			fmt.Printf("lead %s deleted\n", args[0])
		}
		return nil
	},
}
