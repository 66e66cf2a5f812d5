// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/schemalane/schemalane/cmd/flags"
	"github.com/schemalane/schemalane/pkg/schemalane"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report the state of every migration against the history table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, closeDB, err := newEngine(false)
			if err != nil {
				exitCode = 1
				return err
			}
			defer closeDB()

			report, err := eng.Status(ctx)
			if err != nil {
				exitCode = schemalane.ExitCode(err)
				return err
			}

			exitCode = report.ExitCode(flags.FailOnPending())

			if flags.Format() == "json" {
				return printStatusJSON(report)
			}
			printStatusTable(report)
			return nil
		},
	}

	flags.ConnectionFlags(cmd)
	cmd.Flags().String("format", "table", "Output format: table or json")
	cmd.Flags().Bool("fail-on-pending", false, "Exit with code 5 if any migration is pending")
	viper.BindPFlag("FORMAT", cmd.Flags().Lookup("format"))
	viper.BindPFlag("FAIL_ON_PENDING", cmd.Flags().Lookup("fail-on-pending"))

	return cmd
}

func printStatusJSON(report schemalane.StatusReport) error {
	out, err := json.MarshalIndent(report.Entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func printStatusTable(report schemalane.StatusReport) {
	rows := [][]string{{"Version", "Description", "State"}}
	for _, e := range report.Entries {
		rows = append(rows, []string{e.VersionDisplay, e.Description, string(e.Classification)})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(table)
}
