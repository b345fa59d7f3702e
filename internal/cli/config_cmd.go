package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configCommand prints the effective settings.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := c.settings()
			printKeyValue(out, "file", c.loadedPath)
			printKeyValue(out, "server", cfg.Server)
			fmt.Fprintln(out)
			fmt.Fprint(out, cfg.String())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.loadedPath)
			return nil
		},
	})

	return cmd
}
