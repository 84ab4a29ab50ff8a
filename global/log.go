// Package global 持有跨层共享的进程级状态
package global

import (
	"fmt"
	"runtime"

	dumpx "github.com/gookit/goutil/dump"
	"go.uber.org/zap"
)

// Logger 进程级日志器，服务启动时注入
// 迁移脚本等无法走依赖注入的深层代码经由它记录日志
var Logger *zap.Logger

// Log 返回进程级日志器
func Log() *zap.Logger {
	return Logger
}

// Dump 调试输出，带调用位置前缀
func Dump(a ...any) {
	if _, file, line, ok := runtime.Caller(1); ok {
		fmt.Printf("\033[32m%s:%d:\033[0m\n", file, line)
	}
	dumpx.P(a...)
}
