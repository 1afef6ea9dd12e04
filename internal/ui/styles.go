package ui

import "github.com/charmbracelet/lipgloss"

// Icon constants
const (
	HostIcon     = "👑"
	SpyIcon      = "🕵️"
	VillagerIcon = "🧑‍🌾"
	OfflineIcon  = "💤"
	DeadIcon     = "💀"
	VotedIcon    = "🗳️"
)

// Lipgloss Styles
var (
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	wordStyle    = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(1, 4).Bold(true)
	promptStyle  = lipgloss.NewStyle().MarginTop(1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	winStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	loseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	selectedMark = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true).Render("▸ ")
)
