package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/YanGranat/ukhvat-notes-sub000/global"
	internalApp "github.com/YanGranat/ukhvat-notes-sub000/internal/app"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/dao"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/logger"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Evict regular versions beyond the retention cap and exit",
	Long: `Evict regular versions beyond the retention cap and exit.

Named versions are never removed. Without --note every note that has
versions is swept. With --keep the given count overrides the configured
cap for this run only.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if len(configPath) <= 0 {
			configPath = "config/config.yaml"
		}
		noteID, _ := cmd.Flags().GetInt64("note")
		keep, _ := cmd.Flags().GetInt("keep")

		app := bootstrapOneShot(configPath)
		defer shutdownOneShot(app)

		ctx := context.Background()

		// 单笔记或全量两种模式，--keep 覆盖配置的保留上限
		sweepOne := func(id int64) (int, error) {
			if keep >= 0 {
				return app.VersionService.CleanupNow(ctx, id, keep)
			}
			return app.VersionService.CleanupExcessFor(ctx, id)
		}

		if noteID > 0 {
			removed, err := sweepOne(noteID)
			if err != nil {
				fmt.Printf("Cleanup failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Note %d: removed %d versions\n", noteID, removed)
			return
		}

		ids, err := app.VersionService.NoteIDs(ctx)
		if err != nil {
			fmt.Printf("Failed to list notes: %v\n", err)
			os.Exit(1)
		}

		total := 0
		for _, id := range ids {
			removed, err := sweepOne(id)
			if err != nil {
				fmt.Printf("Note %d: %v\n", id, err)
				continue
			}
			total += removed
		}
		fmt.Printf("Swept %d notes, removed %d versions\n", len(ids), total)
	},
}

// bootstrapOneShot builds a full container for a run-and-exit command
// bootstrapOneShot 为一次性命令构建完整容器
func bootstrapOneShot(configPath string) *internalApp.App {
	appConfig, configRealpath, err := internalApp.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loading config from: %s\n", configRealpath)

	lg, err := logger.NewLogger(logger.Config{
		Level:      appConfig.Log.Level,
		File:       appConfig.Log.File,
		Production: appConfig.Log.Production,
	})
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	global.Logger = lg

	db, err := dao.NewDBEngineWithConfig(appConfig.GetDatabaseConfig(), lg)
	if err != nil {
		fmt.Printf("Failed to init database: %v\n", err)
		os.Exit(1)
	}

	app, err := internalApp.NewApp(appConfig, lg, db)
	if err != nil {
		fmt.Printf("Failed to create app container: %v\n", err)
		os.Exit(1)
	}
	return app
}

func shutdownOneShot(app *internalApp.App) {
	ctx, cancel := context.WithTimeout(context.Background(), internalApp.DefaultShutdownTimeout)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		fmt.Printf("Shutdown: %v\n", err)
	}
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().StringP("config", "c", "", "config file path")
	cleanupCmd.Flags().Int64P("note", "n", 0, "note id, 0 sweeps all notes")
	cleanupCmd.Flags().IntP("keep", "k", -1, "keep count override, -1 uses the configured cap")
}
