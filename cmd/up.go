// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/schemalane/schemalane/cmd/flags"
	"github.com/schemalane/schemalane/pkg/schemalane"
	"github.com/spf13/cobra"
)

func upCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, closeDB, err := newEngine(false)
			if err != nil {
				exitCode = schemalane.ExitCode(err)
				return err
			}
			defer closeDB()

			sp, _ := pterm.DefaultSpinner.WithText("Applying migrations...").Start()
			report, err := eng.Up(ctx)
			if err != nil {
				exitCode = schemalane.ExitCode(err)
				sp.Fail(fmt.Sprintf("up failed: %s", err))
				return err
			}

			sp.Success(fmt.Sprintf("applied %d migration(s)", len(report.Applied)))
			for _, m := range report.Applied {
				pterm.Info.Printfln("%s %s (%s)", m.VersionDisplay, m.Description, m.ExecutionTime)
			}
			return nil
		},
	}

	flags.ConnectionFlags(cmd)
	return cmd
}
