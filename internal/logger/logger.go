// Package logger 把标准库 log 的输出改道到用户目录下的日志文件。
// 客户端以 TUI 独占终端，日志直接打到 stdout 会冲花界面；
// 服务端不经过这里，照常写标准输出。
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"
)

const (
	logDirName = ".spy-villagers"
	// 按天一个文件，最多保留一周
	maxLogFiles = 7
)

var (
	logFile *os.File
	logPath string
)

// Init 把标准库 log 重定向到 ~/.spy-villagers/client-YYYYMMDD.log
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("获取用户目录失败: %w", err)
	}

	dir := filepath.Join(home, logDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}

	logPath = filepath.Join(dir, "client-"+time.Now().Format("20060102")+".log")
	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}

	pruneOldLogs(dir)

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	log.Printf("📓 日志写入 %s", logPath)
	return nil
}

// pruneOldLogs 删掉多余的历史日志。文件名里带日期，字典序即时间序。
func pruneOldLogs(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var logs []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "client-") && strings.HasSuffix(name, ".log") {
			logs = append(logs, name)
		}
	}
	sort.Strings(logs)

	for len(logs) > maxLogFiles {
		_ = os.Remove(filepath.Join(dir, logs[0]))
		logs = logs[1:]
	}
}

// Close 关闭日志文件
func Close() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

// LogPanic 记录 panic 与完整堆栈
func LogPanic(r any) {
	log.Printf("💥 panic: %v\n%s", r, debug.Stack())
}

// Path 当前日志文件路径
func Path() string {
	return logPath
}
