package shell

import "github.com/charmbracelet/lipgloss"

const (
	primaryColor = "#2563EB" // Blue
	successColor = "#10B981" // Green
	warningColor = "#F59E0B" // Amber
	errorColor   = "#EF4444" // Red
	dimColor     = "#6B7280" // Gray
)

var (
	railStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(dimColor)).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(primaryColor)).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(dimColor))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(successColor))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(warningColor))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(errorColor))

	questionStyle = lipgloss.NewStyle().Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(lipgloss.Color("#9CA3AF")).
			Padding(0, 1)
)
