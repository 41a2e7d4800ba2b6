package cmd

import (
	"fmt"
	"os"

	"github.com/focuscope/focuscope/config"
	"github.com/focuscope/focuscope/constants/lipgloss"
	"github.com/focuscope/focuscope/providers"
	"github.com/focuscope/focuscope/providers/contracts"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

// RootDependencies holds the wiring shared by every subcommand.
type RootDependencies struct {
	Config       *config.Config
	Cwd          string
	ChatProvider contracts.IChatAIProvider
}

var rootCmd = &cobra.Command{
	Use:   "focuscope",
	Short: "focuscope keeps a living Focus.md overview of your projects.",
	Long: `focuscope scans project directories on a schedule, extracts per-file
metrics and function inventories, flags overlong files and duplicated code,
and maintains a Focus.md report that is rewritten only when the project
materially changes.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Println(version)
			return
		}
		_ = cmd.Help()
	},
}

// handleRootCommand loads configuration and builds the shared dependencies.
// Configuration problems are startup-fatal.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render("Error getting current directory"))
		os.Exit(1)
	}

	cfg, err := config.LoadConfigs(rootCmd, cwd)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}

	provider, err := providers.ChatProviderFactory(cfg.AIProviderConfig)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}

	return &RootDependencies{Config: cfg, Cwd: cwd, ChatProvider: provider}
}

// resolveProjects returns the projects a command should operate on: the
// configured list, or the current directory when none are configured.
func resolveProjects(deps *RootDependencies, args []string) []config.ProjectConfig {
	if len(args) > 0 {
		var projects []config.ProjectConfig
		for _, path := range args {
			projects = append(projects, config.ProjectConfig{Path: path, Watch: true})
		}
		return projects
	}
	if len(deps.Config.Projects) > 0 {
		return deps.Config.Projects
	}
	return []config.ProjectConfig{{Path: deps.Cwd, Watch: true}}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
}
