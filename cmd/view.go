package cmd

import (
	"github.com/spf13/cobra"

	"github.com/TFMV/forcegraph/tui"
	"github.com/TFMV/forcegraph/view"
)

func viewCmd(g *globalOptions) *cobra.Command {
	var (
		inputFormat string
		noLabels    bool
	)

	cmd := &cobra.Command{
		Use:   "view <input>",
		Short: "Explore a graph in the terminal",
		Long: `Run the simulation in the terminal. Hover, click and drag nodes with the
mouse; scroll to zoom.

  q quit   l labels   r reheat   +/- zoom   tab select next   esc clear`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := loadGraph(cmd.ErrOrStderr(), args[0], inputFormat)
			if err != nil {
				return err
			}

			opts, err := g.cfg.ViewOptions()
			if err != nil {
				return err
			}
			// Log lines would tear the full-screen view, so the view runs silent
			v, err := view.New(opts, nil)
			if err != nil {
				return err
			}
			defer v.Dispose()
			if _, err := v.Load(graph); err != nil {
				return err
			}
			return tui.Run(v, graph.Name, !noLabels)
		},
	}

	cmd.Flags().StringVar(&inputFormat, "input-format", "", "Input format (default: from the file extension)")
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "Start with labels hidden")
	return cmd
}
