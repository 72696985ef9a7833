// Package cmd is the forcegraph command line.
package cmd

import (
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TFMV/forcegraph/config"
	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/ingest"
	"github.com/TFMV/forcegraph/logger"
	"github.com/TFMV/forcegraph/models"
)

var version = "0.3.0"

// Terminal colours for command output
var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	bad    = color.New(color.FgRed)
)

// globalOptions are the persistent flags plus the loaded config
type globalOptions struct {
	configPath string
	debug      bool
	logJSON    bool

	cfg *config.Config
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "forcegraph",
		Short: "Force-directed graph layout and interaction",
		Long: brand.Sprint("forcegraph") + " lays out graphs with a force simulation\n" +
			subtle.Sprint("Render static layouts, explore them in the terminal or serve them live to a browser"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debug") {
				cfg.Log.Debug = opts.debug
			}
			if cmd.Flags().Changed("log-json") {
				cfg.Log.JSON = opts.logJSON
			}
			if err := logger.Initialize(cfg.Log.JSON, cfg.Log.Debug); err != nil {
				return err
			}
			if cfg.File != "" {
				logger.Logger.Debugw("Config loaded", logger.FieldFile, cfg.File)
			}
			opts.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Cleanup()
		},
	}
	root.SetVersionTemplate("forcegraph {{ .Version }}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default: "+config.FileName+" in the working directory or its parents)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&opts.logJSON, "log-json", false, "Log JSON to stderr")

	root.AddCommand(
		renderCmd(opts),
		serveCmd(opts),
		viewCmd(opts),
		versionCmd(),
	)
	return root
}

// Execute runs the root command and prints any error
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		printError(root.ErrOrStderr(), err)
	}
	return err
}

// loadGraph reads path and reports records the layout will skip
func loadGraph(w io.Writer, path, format string) (*models.Graph, error) {
	g, err := ingest.LoadFile(path, format)
	if err != nil {
		return nil, err
	}
	_, diags := models.Validate(g)
	printDiagnostics(w, diags)
	return g, nil
}

func printDiagnostics(w io.Writer, diags []*models.GraphDataError) {
	if len(diags) == 0 {
		return
	}
	warn.Fprintf(w, "  %d record(s) skipped\n", len(diags))
	for _, d := range diags {
		subtle.Fprintf(w, "    %-20s %s\n", d.Kind, d.Error())
	}
}

// printError prints err and any hints attached to it
func printError(w io.Writer, err error) {
	bad.Fprintf(w, "forcegraph: %v\n", err)
	for _, hint := range errors.GetAllHints(err) {
		subtle.Fprintf(w, "  hint: %s\n", hint)
	}
}
