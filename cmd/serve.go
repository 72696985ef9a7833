package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/logger"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/server"
)

func serveCmd(g *globalOptions) *cobra.Command {
	var (
		address     string
		fps         int
		inputFormat string
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "serve [input]",
		Short: "Serve a live, interactive view to the browser",
		Long: `Serve the graph at / with a live simulation per browser tab.
Graph files can also be uploaded from the page.

  forcegraph serve network.json
  forcegraph serve network.json --watch    # reload when the file changes
  forcegraph serve --address :9000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch && len(args) == 0 {
				return errors.WithHint(errors.New("--watch needs an input file"), "forcegraph serve <input> --watch")
			}

			scfg, err := g.cfg.ServerConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("address") {
				scfg.Address = address
			}
			if cmd.Flags().Changed("fps") {
				scfg.FPS = fps
			}

			var graph *models.Graph
			if len(args) == 1 {
				if graph, err = loadGraph(cmd.ErrOrStderr(), args[0], inputFormat); err != nil {
					return err
				}
			}

			srv, err := server.New(scfg, graph, logger.Named("server"))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			group, ctx := errgroup.WithContext(ctx)
			group.Go(func() error { return srv.ListenAndServe(ctx) })
			if watch {
				group.Go(func() error { return srv.WatchFile(ctx, args[0], inputFormat) })
			}

			brand.Fprintf(cmd.OutOrStdout(), "  serving on http://%s\n", scfg.Address)
			if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&address, "address", "localhost:8080", "Listen address")
	flags.IntVar(&fps, "fps", 30, "Frames per second sent to each browser")
	flags.StringVar(&inputFormat, "input-format", "", "Input format (default: from the file extension)")
	flags.BoolVarP(&watch, "watch", "w", false, "Reload the graph when the input file changes")
	return cmd
}
