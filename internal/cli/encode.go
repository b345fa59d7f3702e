package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plantuml/pkg/codec"
	"github.com/matzehuels/plantuml/pkg/errors"
)

// encodeCommand prints the URL token for a diagram.
func (c *CLI) encodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "encode [FILE]",
		Short:             "Encode diagram text into a URL token",
		Long:              `Compress and encode FILE (or stdin when FILE is omitted or "-") into the token a PlantUML server expects.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDiagramFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			src, err := readSource(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			token, err := codec.Token(src)
			if err != nil {
				return err
			}
			c.Logger.Debug("encoded diagram", "bytes", len(src), "token_len", len(token))
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

// decodeCommand recovers diagram text from a token or a full server URL.
func (c *CLI) decodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode TOKEN|URL",
		Short: "Decode a URL token back into diagram text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := codec.DecodeText(tokenFromArg(args[0]))
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %q", args[0])
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			if !strings.HasSuffix(text, "\n") {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

// tokenFromArg accepts either a bare token or a URL ending in one.
func tokenFromArg(arg string) string {
	arg = strings.TrimSpace(arg)
	if i := strings.LastIndex(arg, "/"); i >= 0 {
		return arg[i+1:]
	}
	return arg
}
