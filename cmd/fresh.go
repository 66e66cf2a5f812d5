// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/schemalane/schemalane/cmd/flags"
	"github.com/schemalane/schemalane/pkg/schemalane"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func freshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fresh",
		Short: "Drop every user table and the history table, then reapply all migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, closeDB, err := newEngine(flags.Yes())
			if err != nil {
				exitCode = 1
				return err
			}
			defer closeDB()

			sp, _ := pterm.DefaultSpinner.WithText("Dropping and reapplying...").Start()
			report, err := eng.Fresh(ctx)
			if err != nil {
				exitCode = schemalane.ExitCode(err)
				sp.Fail(fmt.Sprintf("fresh failed: %s", err))
				return err
			}

			sp.Success(fmt.Sprintf("reapplied %d migration(s)", len(report.Applied)))
			return nil
		},
	}

	flags.ConnectionFlags(cmd)
	cmd.Flags().Bool("yes", false, "Confirm the destructive drop-and-reapply operation")
	viper.BindPFlag("YES", cmd.Flags().Lookup("yes"))

	return cmd
}
