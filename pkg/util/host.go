package util

import (
	"bufio"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/denisbrodbeck/machineid"
)

var machineIDOnce = sync.OnceValue(func() string {
	if id, err := machineid.ID(); err == nil && id != "" {
		return id
	}
	// 取不到平台机器码时退回主板序列号
	if runtime.GOOS == "linux" {
		if raw, err := os.ReadFile("/sys/class/dmi/id/board_serial"); err == nil {
			return strings.TrimSpace(string(raw))
		}
	}
	return ""
})

// GetMachineID 返回当前主机的稳定标识，获取失败时返回空字符串
func GetMachineID() string {
	return machineIDOnce()
}

// GetOSPrettyName 返回带发行版/版本信息的操作系统名称
func GetOSPrettyName() string {
	switch runtime.GOOS {
	case "linux":
		if name := linuxPrettyName(); name != "" {
			return name
		}
		return "Linux"
	case "windows":
		if out, err := exec.Command("cmd", "/c", "ver").Output(); err == nil {
			return strings.TrimSpace(string(out))
		}
		return "Windows"
	case "darwin":
		if out, err := exec.Command("sw_vers", "-productVersion").Output(); err == nil {
			return "macOS " + strings.TrimSpace(string(out))
		}
		return "macOS"
	default:
		return runtime.GOOS
	}
}

// linuxPrettyName 读取 /etc/os-release 的 PRETTY_NAME
func linuxPrettyName() string {
	file, err := os.Open("/etc/os-release")
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "PRETTY_NAME=") {
			return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), "\"")
		}
	}
	return ""
}
