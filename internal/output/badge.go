package output

import (
	"os"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/ladder/internal/tier"
)

// Tier badge colors follow the escalation order: cool for the cheap PR
// gates, hot for the long nightly/weekly runs.
var tierStyles = map[tier.ID]lipgloss.Style{
	tier.Common: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	tier.L1:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	tier.L2:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	tier.L3:     lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
	tier.L4:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	tier.L5:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

var colorEnabled atomic.Bool

func init() {
	colorEnabled.Store(term.IsTerminal(int(os.Stdout.Fd())))
}

// SetColor forces color on or off ("always"/"never"); "auto" keeps TTY
// detection.
func SetColor(mode string) {
	switch mode {
	case "always":
		colorEnabled.Store(true)
	case "never":
		colorEnabled.Store(false)
	default:
		colorEnabled.Store(term.IsTerminal(int(os.Stdout.Fd())))
	}
}

// TierBadge renders a tier id for human output, colored by escalation
// level when color is enabled.
func TierBadge(id tier.ID) string {
	if !colorEnabled.Load() {
		return string(id)
	}
	style, ok := tierStyles[id]
	if !ok {
		return string(id)
	}
	return style.Render(string(id))
}
