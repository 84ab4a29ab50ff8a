package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configDefault holds the embedded default config, written out on first run
// configDefault 保存内嵌的默认配置，首次运行时落盘
var configDefault string

var rootCmd = &cobra.Command{
	Use:   "ukhvat-notes-service",
	Short: "Ukhvat Notes Service",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpTemplate()
		cmd.Help()
	},
}

func Execute(c string) {
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
