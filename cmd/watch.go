package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/focuscope/focuscope/constants/lipgloss"
	"github.com/focuscope/focuscope/report"
	"github.com/focuscope/focuscope/watcher"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Continuously monitor projects and keep their Focus.md current.",
	Long: `The 'watch' subcommand runs one scan loop per watch-enabled project.
Each loop scans the tree, compares against the previous cycle and rewrites
Focus.md only on material changes. Ctrl+C stops all loops cleanly.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		handleWatchCommand(rootDependencies, args)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func handleWatchCommand(rootDependencies *RootDependencies, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logf := func(format string, args ...any) {
		pterm.Info.Printfln(format, args...)
	}

	var watchers []*watcher.Watcher
	for _, project := range resolveProjects(rootDependencies, args) {
		if !project.Watch {
			continue
		}
		sink := report.NewAtomicSink(project.Path)
		watchers = append(watchers, watcher.NewWatcher(rootDependencies.Config, project, sink, logf))
		pterm.Info.Printfln("watching %s (every %ds, depth %d)",
			project.Path,
			rootDependencies.Config.IntervalFor(project),
			rootDependencies.Config.DepthFor(project))
	}

	if len(watchers) == 0 {
		fmt.Println(lipgloss.Yellow.Render("No watch-enabled projects configured."))
		return
	}

	err := watcher.RunAll(ctx, watchers)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	fmt.Println(lipgloss.Yellow.Render("\n🔄 Exiting..."))
}
