package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/focuscope/focuscope/constants/lipgloss"
	"github.com/focuscope/focuscope/report"
	"github.com/focuscope/focuscope/scanner"
	"github.com/focuscope/focuscope/scanner/models"
	"github.com/olekukonko/tablewriter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Scan projects once and write their Focus.md reports.",
	Long: `The 'scan' subcommand runs a single scan cycle per project: it walks
the tree, analyzes files, detects duplicates and writes Focus.md. Unlike
'watch' it exits after one pass and reports a summary table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies := handleRootCommand(cmd)
		return handleScanCommand(rootDependencies, args)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func handleScanCommand(rootDependencies *RootDependencies, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)

	treeScanner := scanner.NewTreeScanner(rootDependencies.Config)
	renderer := report.NewRenderer(rootDependencies.Config)

	var rows [][]string
	var failed bool
	for _, project := range resolveProjects(rootDependencies, args) {
		running, _ := spinner.Start(fmt.Sprintf("Scanning %s...", project.Path))

		snapshot, err := treeScanner.Scan(ctx, project)
		running.Stop()
		fmt.Print("\r")
		if err != nil {
			failed = true
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%s: %v", project.Path, err)))
			continue
		}

		sink := report.NewAtomicSink(snapshot.RootPath)
		wrote, err := sink.Write(renderer.Render(snapshot))
		if err != nil {
			failed = true
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			continue
		}

		status := "unchanged"
		if wrote {
			status = "updated"
		}
		rows = append(rows, summaryRow(snapshot, status))
	}

	if len(rows) > 0 {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Project", "Type", "Files", "Lines", "Duplicates", "Issues", "Report"})
		table.SetBorder(false)
		table.SetCenterSeparator("")
		for _, row := range rows {
			table.Append(row)
		}
		table.Render()
	}

	if failed {
		return fmt.Errorf("one or more projects failed to scan")
	}
	return nil
}

func summaryRow(snapshot *models.ScanSnapshot, status string) []string {
	return []string{
		snapshot.ProjectName,
		snapshot.ProjectType,
		strconv.Itoa(snapshot.TotalFiles),
		strconv.Itoa(snapshot.TotalLines),
		strconv.Itoa(len(snapshot.Duplicates)),
		strconv.Itoa(len(snapshot.AllWarnings())),
		status,
	}
}
