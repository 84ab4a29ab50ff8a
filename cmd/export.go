package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export version history to the configured archive storage and exit",
	Long: `Export version history to the configured archive storage and exit.

Requires archive storage to be enabled in the config. With --note a single
note is exported, otherwise every note that has versions.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if len(configPath) <= 0 {
			configPath = "config/config.yaml"
		}
		noteID, _ := cmd.Flags().GetInt64("note")

		app := bootstrapOneShot(configPath)
		defer shutdownOneShot(app)

		if !app.Config().IsArchiveEnabled() {
			fmt.Println("Archive storage is not enabled in the config")
			os.Exit(1)
		}

		ctx := context.Background()

		if noteID > 0 {
			result, err := app.ArchiveService.ExportNote(ctx, noteID)
			if err != nil {
				fmt.Printf("Export failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Note %d: %d versions -> %s (%s, run %s)\n",
				result.NoteID, result.VersionCount, result.ManifestPath, result.Provider, result.RunID)
			return
		}

		sweep, err := app.ArchiveService.ExportAll(ctx)
		if err != nil {
			fmt.Printf("Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d notes, %d failed\n", sweep.Exported, sweep.Failed)
		if sweep.Failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("config", "c", "", "config file path")
	exportCmd.Flags().Int64P("note", "n", 0, "note id, 0 exports all notes")
}
