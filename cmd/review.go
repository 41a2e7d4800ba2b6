package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/focuscope/focuscope/config"
	"github.com/focuscope/focuscope/constants/lipgloss"
	"github.com/focuscope/focuscope/report"
	"github.com/focuscope/focuscope/review"
	"github.com/focuscope/focuscope/scanner"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review [path]",
	Short: "Generate an AI code review (CodeReview.md) for a project.",
	Long: `The 'review' subcommand scans a project, hands the analysis to the
configured AI provider and writes the streamed review to CodeReview.md
in the project root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies := handleRootCommand(cmd)
		return handleReviewCommand(rootDependencies, args, false)
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules [path]",
	Short: "Generate editor rules (.cursorrules) for a project.",
	Long: `The 'rules' subcommand scans a project and asks the configured AI
provider for project-specific editor rules, written to .cursorrules in
the project root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies := handleRootCommand(cmd)
		return handleReviewCommand(rootDependencies, args, true)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(rulesCmd)
}

func handleReviewCommand(rootDependencies *RootDependencies, args []string, rules bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	path := rootDependencies.Cwd
	if len(args) == 1 {
		path = args[0]
	}
	project := projectAt(rootDependencies, path)

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)
	running, _ := spinner.Start("Scanning project...")

	snapshot, err := scanner.NewTreeScanner(rootDependencies.Config).Scan(ctx, project)
	running.Stop()
	fmt.Print("\r")
	if err != nil {
		return err
	}

	generator := &review.Generator{
		Provider:  rootDependencies.ChatProvider,
		Renderer:  report.NewRenderer(rootDependencies.Config),
		Theme:     rootDependencies.Config.Theme,
		CharLimit: rootDependencies.Config.ContextCharLimit,
	}

	if rules {
		if err := generator.GenerateRules(ctx, snapshot); err != nil {
			return err
		}
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("\n%s written.", review.RulesFileName)))
		return nil
	}

	if err := generator.GenerateReview(ctx, snapshot); err != nil {
		return err
	}
	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("\n%s written.", review.ReviewFileName)))
	return nil
}

// projectAt returns the configured project matching path, or an ad-hoc one.
func projectAt(rootDependencies *RootDependencies, path string) config.ProjectConfig {
	for _, candidate := range rootDependencies.Config.Projects {
		if candidate.Path == path {
			return candidate
		}
	}
	return config.ProjectConfig{Path: path}
}
