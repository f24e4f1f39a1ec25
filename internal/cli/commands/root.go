package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vroidbones/vroidbones/internal/cli/config"
	"github.com/vroidbones/vroidbones/internal/cli/ui"
	"github.com/vroidbones/vroidbones/internal/logging"
	"github.com/vroidbones/vroidbones/internal/pipeline"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// errReported marks a failure whose message has already been printed
var errReported = errors.New("failed")

// globals holds the state shared by every subcommand, filled in before a
// subcommand runs
type globals struct {
	configFile string
	verbose    bool
	noColor    bool

	cfg    *config.Config
	logger *zap.Logger
}

// runner returns a pipeline runner logging through the command logger
func (g *globals) runner() *pipeline.Runner {
	return pipeline.NewRunner(g.logger)
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "vroidbones",
		Short: "Normalize VRoid rig documents",
		Long: color.CyanString(`vroidbones - VRoid skeleton normalizer

Cleans up armatures exported from VRoid Studio:
  • Renames bones to the host's left/right convention (UpperArm_L)
  • Welds bone chains and removes unused leaf bones
  • Sets up limb IK, rotation limits and finger coupling`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configFile)
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), g.noColor))
				return errReported
			}
			g.cfg = cfg
			if cfg.Output.NoColor {
				g.noColor = true
			}
			if g.noColor {
				color.NoColor = true
			}

			logger, err := logging.New(g.verbose)
			if err != nil {
				return err
			}
			g.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", "Path to config file (default: ./vroidbones.yml)")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log per-bone decisions")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newFixCommand(g))
	for _, action := range []pipeline.Action{pipeline.ActionIK, pipeline.ActionFingers, pipeline.ActionLimits, pipeline.ActionCleanup} {
		rootCmd.AddCommand(newSetupCommand(g, action))
	}
	rootCmd.AddCommand(newInspectCommand(g))
	rootCmd.AddCommand(newFindCommand(g))
	rootCmd.AddCommand(newWatchCommand(g))
	rootCmd.AddCommand(newServeCommand(g))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the vroidbones version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			kv.AddRow("vroidbones version", Version)
			kv.AddRow("Git commit", GitCommit)
			kv.AddRow("Build date", BuildDate)
			kv.AddRow("Go version", goVer)
			kv.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
