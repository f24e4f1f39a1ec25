package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vroidbones/vroidbones/internal/cli/ui"
	"github.com/vroidbones/vroidbones/internal/pipeline"
	"github.com/vroidbones/vroidbones/internal/watch"
)

func newWatchCommand(g *globals) *cobra.Command {
	var ignore []string

	cmd := &cobra.Command{
		Use:   "watch [DIR...]",
		Short: "Fix rig documents as they change",
		Long: `Watch directories for rig documents and run 'vroidbones fix' on every one
that is saved. Documents are rewritten in place only when fixing changes
them, so a fixed document does not trigger another pass.

The patterns come from watch.patterns in vroidbones.yml.

Examples:
  vroidbones watch
  vroidbones watch exports/ --ignore '*.bak.yml'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := args
			if len(dirs) == 0 {
				dirs = []string{"."}
			}
			for _, dir := range dirs {
				if info, err := os.Stat(dir); err != nil || !info.IsDir() {
					return fmt.Errorf("%s is not a directory", dir)
				}
			}

			opts := g.cfg.Options()
			onChange := fixOnChange(cmd, g, opts)

			watcher, err := watch.NewFileWatcher(watch.Config{
				Dirs:     dirs,
				Patterns: g.cfg.Watch.Patterns,
				Ignored:  ignore,
				Logger:   g.logger,
			}, onChange)
			if err != nil {
				return err
			}
			if err := watcher.Start(); err != nil {
				return err
			}
			defer watcher.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "%s %v for %v (Ctrl+C to stop)\n",
				color.CyanString("Watching"), dirs, g.cfg.Watch.Patterns)
			<-ctx.Done()
			fmt.Fprintln(cmd.OutOrStdout(), "\nStopped watching")
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Glob patterns of files to leave alone")
	return cmd
}

// fixOnChange returns the watcher callback that fixes each changed document
func fixOnChange(cmd *cobra.Command, g *globals, opts pipeline.Options) func([]string) error {
	runner := g.runner()
	return func(files []string) error {
		for _, file := range files {
			outcome, err := process(runner, fileJob{action: pipeline.ActionFix, input: file, opts: opts}, g.logger)
			if err != nil {
				g.logger.Debug("Fix failed", zap.String("file", file), zap.Error(err))
				fmt.Fprint(cmd.ErrOrStderr(), ui.RigFailure(asRigError(file, err), g.noColor))
				continue
			}
			if outcome.Written {
				ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s: %s", file, outcome.Result.Summary), g.noColor)
			}
		}
		return nil
	}
}
