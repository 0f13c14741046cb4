package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genomechart/pkg/config"
	"github.com/matzehuels/genomechart/pkg/display"
)

// plotOpts holds the command-line flags for the plot command.
type plotOpts struct {
	output  string // output HTML path; defaults to the config name with .html
	noCache bool   // bypass the payload cache
}

// plotCommand creates the plot command.
func (c *CLI) plotCommand() *cobra.Command {
	var opts plotOpts

	cmd := &cobra.Command{
		Use:   "plot <config.toml>",
		Short: "Compose the charts of a configuration into an HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <config>.html)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the payload cache")

	return cmd
}

func runPlot(ctx context.Context, path string, opts plotOpts) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	s, err := compose(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer s.Close()

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
	}
	if err := s.composer.Show(ctx, &display.File{Path: out, Options: htmlOptions(cfg)}); err != nil {
		return err
	}

	printSuccess("Composed %d charts for %s", s.composer.Environment().Len(), StyleHighlight.Render(cfg.Window.String()))
	printSummaries(display.Summarize(s.composer.Environment()))
	printFile(out)
	printNewline()
	printNextStep("Serve it", "genomechart serve "+path)
	return nil
}
