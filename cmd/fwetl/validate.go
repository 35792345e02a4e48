package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"fwetl/internal/config"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Lint the pipeline configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadPipeline(cmd, opts)
			if err != nil {
				return err
			}
			issues := config.ValidatePipeline(p)
			renderIssues(cmd, issues)
			if config.HasErrors(issues) {
				return fmt.Errorf("configuration is invalid: %s", opts.configPath)
			}
			cmd.Printf("configuration is valid: %s\n", opts.configPath)
			return nil
		},
	}
}

func renderIssues(cmd *cobra.Command, issues []config.Issue) {
	if len(issues) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(cmd.ErrOrStderr())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Severity", "Path", "Message"})
	for _, iss := range issues {
		t.AppendRow(table.Row{iss.Severity, iss.Path, iss.Message})
	}
	t.Render()
}
