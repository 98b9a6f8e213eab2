package main

import (
	"context"
	"fmt"
	"time"

	"github.com/groblegark/kleads/internal/client"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List leads",
	GroupID: "leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := leadFilterRequest(cmd)
		if err != nil {
			return err
		}
		req.Page, _ = cmd.Flags().GetInt("page")
		req.Limit, _ = cmd.Flags().GetInt("limit")

		resp, err := leadsClient.ListLeads(context.Background(), req)
		if err != nil {
			return fmt.Errorf("listing leads: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
		} else {
			printLeadListTable(resp)
		}
		return nil
	},
}

// addLeadFilterFlags registers the filter flags shared by list and watch.
func addLeadFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("email", "", "filter by email substring")
	cmd.Flags().StringP("company", "c", "", "filter by company substring")
	cmd.Flags().String("city", "", "filter by city substring")
	cmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	cmd.Flags().StringSlice("source", nil, "filter by source (repeatable)")
	cmd.Flags().Int("score-min", 0, "minimum score")
	cmd.Flags().Int("score-max", 0, "maximum score")
	cmd.Flags().Float64("value-min", 0, "minimum lead value")
	cmd.Flags().Float64("value-max", 0, "maximum lead value")
	cmd.Flags().String("created-after", "", "created at or after (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().String("created-before", "", "created at or before (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().String("activity-after", "", "last activity at or after (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().String("activity-before", "", "last activity at or before (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().Bool("qualified", false, "filter by qualification (--qualified or --qualified=false)")
}

// leadFilterRequest builds a ListLeadsRequest from the shared filter flags.
// Page and limit are left to the caller.
func leadFilterRequest(cmd *cobra.Command) (*client.ListLeadsRequest, error) {
	email, _ := cmd.Flags().GetString("email")
	company, _ := cmd.Flags().GetString("company")
	city, _ := cmd.Flags().GetString("city")
	status, _ := cmd.Flags().GetStringSlice("status")
	source, _ := cmd.Flags().GetStringSlice("source")

	req := &client.ListLeadsRequest{
		Email:   email,
		Company: company,
		City:    city,
		Status:  status,
		Source:  source,
	}

	if cmd.Flags().Changed("score-min") {
		v, _ := cmd.Flags().GetInt("score-min")
		req.ScoreMin = &v
	}
	if cmd.Flags().Changed("score-max") {
		v, _ := cmd.Flags().GetInt("score-max")
		req.ScoreMax = &v
	}
	if cmd.Flags().Changed("value-min") {
		v, _ := cmd.Flags().GetFloat64("value-min")
		req.ValueMin = &v
	}
	if cmd.Flags().Changed("value-max") {
		v, _ := cmd.Flags().GetFloat64("value-max")
		req.ValueMax = &v
	}
	if cmd.Flags().Changed("qualified") {
		v, _ := cmd.Flags().GetBool("qualified")
		req.Qualified = &v
	}

	for flag, dst := range map[string]**time.Time{
		"created-after":   &req.CreatedAfter,
		"created-before":  &req.CreatedBefore,
		"activity-after":  &req.ActivityAfter,
		"activity-before": &req.ActivityBefore,
	} {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		s, _ := cmd.Flags().GetString(flag)
		t, err := parseTimeFlag(s)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", flag, err)
		}
		*dst = &t
	}

	return req, nil
}

// parseTimeFlag accepts RFC 3339 timestamps or bare dates (2006-01-02).
func parseTimeFlag(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q (expected RFC 3339 or YYYY-MM-DD)", s)
	}
	return t, nil
}

func init() {
	addLeadFilterFlags(listCmd)
	listCmd.Flags().IntP("page", "p", 1, "page number")
	listCmd.Flags().Int("limit", 20, "leads per page")
}
