package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/focuscope/focuscope/config"
	"github.com/focuscope/focuscope/constants/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a focus-config.yml with the default settings.",
	Long: `The 'init' subcommand writes a focus-config.yml populated with the
built-in defaults into the current directory, as a starting point for
customizing ignore lists, length standards and monitored projects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleInitCommand()
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing focus-config.yml.")
	rootCmd.AddCommand(initCmd)
}

func handleInitCommand() error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	path := filepath.Join(cwd, "focus-config.yml")

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	cfg.Projects = []config.ProjectConfig{{Name: filepath.Base(cwd), Path: ".", Watch: true}}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("%s written.", path)))
	return nil
}
