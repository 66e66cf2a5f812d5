// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/schemalane/schemalane/cmd/flags"
	"github.com/schemalane/schemalane/pkg/scaffold"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a migrations directory with a starter migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags.Path()
			if path == "" {
				path = "./migrations"
			}

			report, err := scaffold.InitProject(path, flags.Force())
			if err != nil {
				exitCode = 1
				pterm.Error.Printfln("init failed: %s", err)
				return err
			}

			pterm.Success.Printfln("wrote %s", report.ExampleFile)
			return nil
		},
	}

	cmd.Flags().String("path", "./migrations", "Directory to scaffold")
	cmd.Flags().Bool("force", false, "Overwrite the starter migration if the directory already has migrations")
	viper.BindPFlag("PATH", cmd.Flags().Lookup("path"))
	viper.BindPFlag("FORCE", cmd.Flags().Lookup("force"))

	return cmd
}
