package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plantuml/pkg/codec"
	"github.com/matzehuels/plantuml/pkg/errors"
)

// urlCommand prints the image URL for diagram files without contacting the
// server.
func (c *CLI) urlCommand() *cobra.Command {
	var (
		server string
		text   string
	)

	cmd := &cobra.Command{
		Use:   "url [FILE...]",
		Short: "Print the server URL for diagrams",
		Long: `Print the PlantUML server URL that renders each FILE, or the diagram given
with --text. Nothing is sent to the server.`,
		ValidArgsFunction: completeDiagramFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" && len(args) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "provide diagram files or --text")
			}
			base := firstNonEmpty(server, c.settings().Server)
			if err := errors.ValidateServerURL(base); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if text != "" {
				u, err := codec.URL(base, text)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, u)
			}
			for _, path := range args {
				src, err := readSource(path, cmd.InOrStdin())
				if err != nil {
					return err
				}
				u, err := codec.URL(base, src)
				if err != nil {
					return err
				}
				if len(args) > 1 {
					fmt.Fprintf(out, "%s\t%s\n", path, u)
				} else {
					fmt.Fprintln(out, u)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "", "PlantUML image endpoint (overrides config)")
	cmd.Flags().StringVarP(&text, "text", "t", "", "diagram text to encode instead of files")

	return cmd
}

// readSource reads a diagram file, or stdin when path is "-".
func readSource(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		return string(data), nil
	}
	if err := errors.ValidateInputPath(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return string(data), nil
}
