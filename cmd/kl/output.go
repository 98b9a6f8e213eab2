package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/groblegark/kleads/internal/client"
	"github.com/groblegark/kleads/internal/model"
	"github.com/groblegark/kleads/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printLeadTable(lead *model.Lead) {
	fmt.Printf("ID:            %s\n", lead.ID)
	fmt.Printf("Name:          %s %s\n", lead.FirstName, lead.LastName)
	fmt.Printf("Email:         %s\n", lead.Email)
	if lead.Phone != "" {
		fmt.Printf("Phone:         %s\n", lead.Phone)
	}
	if lead.Company != "" {
		fmt.Printf("Company:       %s\n", lead.Company)
	}
	if lead.City != "" || lead.State != "" {
		fmt.Printf("Location:      %s, %s\n", lead.City, lead.State)
	}
	fmt.Printf("Source:        %s\n", lead.Source)
	fmt.Printf("Status:        %s\n", ui.RenderStatus(lead.Status))
	fmt.Printf("Score:         %d\n", lead.Score)
	fmt.Printf("Value:         $%.2f\n", lead.LeadValue)
	fmt.Printf("Qualified:     %t\n", lead.IsQualified)
	if lead.LastActivityAt != nil {
		fmt.Printf("Last Activity: %s\n", lead.LastActivityAt.Format("2006-01-02 15:04:05"))
	}
	if !lead.CreatedAt.IsZero() {
		fmt.Printf("Created At:    %s\n", lead.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if !lead.UpdatedAt.IsZero() {
		fmt.Printf("Updated At:    %s\n", lead.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printLeadListTable(resp *client.ListLeadsResponse) {
	printLeadRows(resp.Leads)

	fmt.Printf("\npage %d/%d (%d leads of %d total)\n", resp.Page, resp.TotalPages, len(resp.Leads), resp.Total)
	fmt.Println(ui.RenderMuted(fmt.Sprintf("qualified: %d  total value: $%.2f  avg score: %.1f",
		resp.Summary.QualifiedCount, resp.Summary.TotalValue, resp.Summary.AvgScore)))
}

// printLeadRows prints the lead table without pagination metadata.
// Used by watch, where each batch is a diff rather than a page.
func printLeadRows(leads []*model.Lead) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCOMPANY\tSOURCE\tSTATUS\tSCORE\tVALUE")
	for _, l := range leads {
		name := l.FirstName + " " + l.LastName
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t$%.2f\n",
			l.ID,
			name,
			l.Email,
			l.Company,
			l.Source,
			ui.RenderStatus(l.Status),
			l.Score,
			l.LeadValue,
		)
	}
	w.Flush()
}

func printEventsTable(events []*model.Event) {
	if len(events) == 0 {
		fmt.Println("no activity recorded")
		return
	}
	for _, e := range events {
		ts := e.CreatedAt.Format("2006-01-02 15:04:05")
		fmt.Printf("[%s] %s by %s\n", ui.RenderMuted(ts), ui.RenderAccent(e.Topic), e.Actor)
		if len(e.Payload) > 0 {
			fmt.Printf("    %s\n", string(e.Payload))
		}
	}
}
