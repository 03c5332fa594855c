package main

import (
	"encoding/json"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vbonduro/stowaway/internal/maintenance"
)

func outputReport(cmd *cobra.Command, format string, report maintenance.Report) error {
	if format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Job", "Dry run", "Processed", "Changed", "Skipped", "Errored"})
	t.AppendRow(table.Row{report.Job, report.DryRun, report.Processed, report.Changed, report.Skipped, report.Errored})
	t.Render()
	return nil
}
