package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"worldloom/internal/validate"
)

func validateCmd() *cobra.Command {
	var ticks int
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Audit the world against its definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(ticks)
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", 0, "Ticks to run before auditing")
	return cmd
}

func runValidate(ticks int) error {
	cfg, def, err := loadConfigs()
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, def, 0, zap.NewNop())
	if err != nil {
		return err
	}
	engine.Run(ticks)

	report, err := validate.Run(def, engine.Store())
	if err != nil {
		return err
	}

	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(os.Stdout, "Errors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		fmt.Fprintf(os.Stdout, "Warnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out *os.File, issues []validate.Issue) {
	for _, issue := range issues {
		location := issue.Entity
		if issue.Kind != "" {
			location = fmt.Sprintf("%s [%s]", issue.Entity, issue.Kind)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
