package cmd

import (
	"fmt"
	"os"

	"github.com/YanGranat/ukhvat-notes-sub000/global"
	internalApp "github.com/YanGranat/ukhvat-notes-sub000/internal/app"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/dao"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/upgrade"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/logger"

	"github.com/spf13/cobra"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade legacy database schema and other data to the latest version",
	Long: `Upgrade legacy database schema and other data to the latest version.

This command will check the current database version and apply all pending migrations.
It is safe to run this command multiple times - already applied migrations will be skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		if len(configPath) <= 0 {
			configPath = "config/config.yaml"
		}

		// 使用 LoadConfig 直接加载配置到 AppConfig
		appConfig, configRealpath, err := internalApp.LoadConfig(configPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Loading config from: %s\n", configRealpath)

		// 初始化日志
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

		// 初始化数据库（使用注入的配置）
		db, err := dao.NewDBEngineWithConfig(appConfig.GetDatabaseConfig(), lg)
		if err != nil {
			fmt.Printf("Failed to init database: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Starting database upgrade...")

		// 执行升级
		if err := upgrade.Execute(db, lg, internalApp.Version); err != nil {
			fmt.Printf("Upgrade failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Database upgrade completed successfully!")
	},
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().StringP("config", "c", "", "config file path")
}
