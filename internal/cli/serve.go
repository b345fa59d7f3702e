package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plantuml/internal/server"
)

// serveCommand runs the HTTP rendering API in the foreground.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   clientFlags
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP rendering API",
		Long: `Serve a small HTTP API in front of the PlantUML server:

  POST /render          diagram text in, image out
  POST /url             diagram text in, {"url", "token"} out
  GET  /decode/{token}  diagram text out
  GET  /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings()
			if err := flags.apply(cfg); err != nil {
				return err
			}

			cl, store, err := c.newClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(server.Config{Addr: addr, RequestTimeout: timeout}, cl, c.Logger)
			printInfo(cmd.OutOrStdout(), "Serving on %s", StyleLink.Render("http://"+srv.Addr()))
			printNextStep(cmd.OutOrStdout(), "Try", "curl --data-binary @diagram.puml http://"+srv.Addr()+"/render -o diagram.png")
			return srv.ListenAndServe(ctx)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&timeout, "request-timeout", 0, "per-request deadline for API calls (default twice the client timeout)")

	return cmd
}
