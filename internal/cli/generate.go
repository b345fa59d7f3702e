package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plantuml/pkg/client"
	"github.com/matzehuels/plantuml/pkg/errors"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	clientFlags
	output    string // image path, single input only
	errorFile string // error page path, single input only
	directory string // destination directory for images and error pages
	ext       string // image extension
	json      bool   // print results as JSON instead of styled lines
	quiet     bool   // suppress the progress bar
}

// generateCommand creates the generate command, the main entry point for
// rendering diagram files.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:     "generate FILE...",
		Aliases: []string{"gen"},
		Short:   "Render diagram files to images",
		Long: `Render each FILE through the PlantUML server.

The image is written next to the input with its extension replaced (or into
--directory). When the server rejects a diagram, its HTML error page is saved
as <name>_error.html instead and the command exits non-zero after processing
the remaining files. Inputs that would share an output name in --directory
are rejected before any request is made.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeDiagramFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 && (opts.output != "" || opts.errorFile != "") {
				return errors.New(errors.ErrCodeInvalidInput, "--output and --error-file require a single input file")
			}
			for _, arg := range args {
				if err := errors.ValidateInputPath(arg); err != nil {
					return err
				}
			}
			return c.runGenerate(cmd, args, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "image path (single input only)")
	cmd.Flags().StringVarP(&opts.errorFile, "error-file", "e", "", "error page path (single input only)")
	cmd.Flags().StringVarP(&opts.directory, "directory", "d", "", "write images and error pages into this directory")
	cmd.Flags().StringVar(&opts.ext, "ext", "", "image extension (default from config, .png)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "hide the progress bar")

	return cmd
}

// runGenerate renders every input and reports the outcome.
func (c *CLI) runGenerate(cmd *cobra.Command, inputs []string, opts *generateOpts) error {
	ctx := cmd.Context()
	cfg := c.settings()
	if err := opts.apply(cfg); err != nil {
		return err
	}

	cl, store, err := c.newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	fileOpts := client.FileOptions{
		Output:    opts.output,
		ErrorFile: opts.errorFile,
		Directory: firstNonEmpty(opts.directory, cfg.OutputDir),
		Ext:       firstNonEmpty(opts.ext, cfg.Ext),
	}

	interactive := !opts.quiet && !opts.json
	prog := newProgress(c.Logger)

	var results []client.Result
	spun := false
	if len(inputs) == 1 {
		var res client.Result
		if interactive {
			spin := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Rendering "+inputs[0])
			res, err = renderWithSpinner(ctx, spin, cl, inputs[0], fileOpts)
			spun = true
		} else {
			res, err = cl.ProcessFile(ctx, inputs[0], fileOpts)
		}
		if err == nil {
			results = append(results, res)
		}
	} else {
		var rep reporter = nopReporter{}
		if interactive {
			rep = newReporter(cmd.ErrOrStderr())
		}
		rep.Start(len(inputs))
		n := 0
		results, err = cl.ProcessFiles(ctx, inputs, fileOpts, func(r client.Result) {
			n++
			rep.Update(n, r.Filename)
		})
		rep.Finish()
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.json:
		if jerr := writeResultsJSON(out, results); jerr != nil {
			return jerr
		}
	case spun:
		printOutputs(out, results)
	default:
		printResults(out, results)
	}
	if err != nil {
		return err
	}

	failed := countFailed(results)
	prog.done(fmt.Sprintf("Generated %d of %d diagrams", len(results)-failed, len(results)))
	if failed > 0 {
		return errors.New(errors.ErrCodeHTTP, "%d of %d diagrams failed", failed, len(results))
	}
	return nil
}

// renderWithSpinner processes a single file while spin animates, then leaves
// the outcome on the spinner's line. An interrupted render returns the
// context error so the caller exits as cancelled.
func renderWithSpinner(ctx context.Context, spin *Spinner, cl *client.Client, input string, opts client.FileOptions) (client.Result, error) {
	spin.Start()
	res, err := cl.ProcessFile(ctx, input, opts)

	switch {
	case spin.Cancelled():
		spin.Stop()
		return client.Result{}, ctx.Err()
	case err != nil:
		spin.Stop()
	case res.OK:
		spin.StopWithSuccess(res.Filename)
	default:
		spin.StopWithError(fmt.Sprintf("%s %s", res.Filename, StyleDim.Render(fmt.Sprintf("(HTTP %d)", res.StatusCode))))
	}
	return res, err
}

// writeResultsJSON prints results as an indented JSON array.
func writeResultsJSON(w io.Writer, results []client.Result) error {
	if results == nil {
		results = []client.Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// printResults prints one styled line per file.
func printResults(w io.Writer, results []client.Result) {
	for _, r := range results {
		if r.OK {
			printSuccess(w, "%s", r.Filename)
			printFile(w, r.Output)
			continue
		}
		printError(w, "%s %s", r.Filename, StyleDim.Render(fmt.Sprintf("(HTTP %d)", r.StatusCode)))
		printFile(w, r.ErrorFile)
	}
}

// printOutputs prints only the written paths, for when the status line was
// already shown by the spinner.
func printOutputs(w io.Writer, results []client.Result) {
	for _, r := range results {
		if r.OK {
			printFile(w, r.Output)
		} else {
			printFile(w, r.ErrorFile)
		}
	}
}

func countFailed(results []client.Result) int {
	n := 0
	for _, r := range results {
		if !r.OK {
			n++
		}
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
