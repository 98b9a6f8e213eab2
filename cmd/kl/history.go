package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:     "history <id>",
	Short:   "Show the activity history of a lead",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := leadsClient.GetHistory(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching history: %w", err)
		}

		if jsonOutput {
			printJSON(events)
		} else {
			printEventsTable(events)
		}
		return nil
	},
}
