package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genomechart/pkg/config"
	"github.com/matzehuels/genomechart/pkg/display"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string // listen address
	noCache bool   // bypass the payload cache
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: display.DefaultAddr}

	cmd := &cobra.Command{
		Use:   "serve <config.toml>",
		Short: "Compose the charts of a configuration and serve them over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the payload cache")

	return cmd
}

func runServe(ctx context.Context, path string, opts serveOpts) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	s, err := compose(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer s.Close()

	srv := display.NewServer(
		display.WithLogger(loggerFromContext(ctx)),
		display.WithHTMLOptions(htmlOptions(cfg)),
	)
	if err := s.composer.Show(ctx, srv); err != nil {
		return err
	}

	printSuccess("Composed %d charts for %s", s.composer.Environment().Len(), StyleHighlight.Render(cfg.Window.String()))
	printSummaries(display.Summarize(s.composer.Environment()))
	printKeyValue("Address", StyleLink.Render(serveURL(opts.addr)))
	printDetail("Press Ctrl+C to stop")

	return srv.ListenAndServe(ctx, opts.addr)
}

// serveURL returns a browsable URL for a listen address such as ":8080".
func serveURL(addr string) string {
	if addr == "" {
		addr = display.DefaultAddr
	}
	if addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}
