package cmd

import (
	"fmt"
	"runtime"
	"time"

	internalApp "github.com/YanGranat/ukhvat-notes-sub000/internal/app"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/util"

	"github.com/gookit/goutil/fmtutil"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print build and host information and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s v%s\n", internalApp.Name, internalApp.Version)
		fmt.Printf("Git:        %s\n", internalApp.GitTag)
		fmt.Printf("BuildTime:  %s\n", internalApp.BuildTime)
		fmt.Printf("Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Printf("OS:         %s\n", util.GetOSPrettyName())

		if id := util.GetMachineID(); id != "" {
			fmt.Printf("Machine ID: %s\n", id)
		}

		if hInfo, err := host.Info(); err == nil {
			fmt.Printf("Host:       %s (up %s)\n", hInfo.Hostname, (time.Duration(hInfo.Uptime) * time.Second).String())
		}

		physCores, _ := cpu.Counts(false)
		logicCores, _ := cpu.Counts(true)
		if physCores > 0 || logicCores > 0 {
			fmt.Printf("CPU cores:  %d physical / %d logical\n", physCores, logicCores)
		}

		if vMem, err := mem.VirtualMemory(); err == nil {
			fmt.Printf("Memory:     %s used of %s (%.0f%%)\n",
				fmtutil.DataSize(vMem.Used),
				fmtutil.DataSize(vMem.Total),
				vMem.UsedPercent)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
