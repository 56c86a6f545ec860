package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pottytracker/internal/app"
)

var (
	exportOutput string
	importInput  string
	importClear  bool
	importYes    bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or import the local store",
	Long: `Export or import every account, child, event and invite as one JSON file.

Examples:
  potty backup export
  potty backup export -o mybackup.json
  potty backup import -i backup.json          # merge into the current store
  potty backup import -i backup.json --clear  # replace the current store`,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store to a JSON file",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		outputPath := exportOutput
		if outputPath == "" {
			outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
		}

		dir := filepath.Dir(outputPath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		data, err := a.Backup.Export(cmd.Context(), outputPath)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d keys to %s\n", len(data.Entries), outputPath)
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON backup into the store",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if _, err := os.Stat(importInput); os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", importInput)
		}

		if importClear {
			if !importYes && !confirm(cmd, "WARNING: This will delete all existing data. Type 'yes' to confirm: ") {
				fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
				return nil
			}
			if err := a.Backup.Clear(cmd.Context()); err != nil {
				return err
			}
		}

		data, err := a.Backup.Import(cmd.Context(), importInput)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d keys exported at %s\n", len(data.Entries), data.ExportedAt.Format(time.RFC3339))
		return nil
	}),
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "Input file path")
	importCmd.Flags().BoolVar(&importClear, "clear", false, "Clear existing data before import (destructive)")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Skip the --clear confirmation")
	_ = importCmd.MarkFlagRequired("input")

	backupCmd.AddCommand(exportCmd, importCmd)
	rootCmd.AddCommand(backupCmd)
}
