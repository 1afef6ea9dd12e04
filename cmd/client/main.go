package main

import (
	"flag"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/undercover-games/spy-villagers/internal/logger"
	"github.com/undercover-games/spy-villagers/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:1793", "服务器地址")
	flag.Parse()

	// 日志重定向到文件，避免污染终端界面
	if err := logger.Init(); err != nil {
		log.Printf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	serverURL := fmt.Sprintf("ws://%s/ws", *serverAddr)

	model := ui.NewModel(serverURL)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
