package app

import "charm.land/lipgloss/v2"

var (
	headerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	speedDownStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	speedUpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	altSpeedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("136")).Bold(true)
	filterChipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("238")).Padding(0, 1)
	rowNameStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	rowMetaStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	rowPausedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	rowErrorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	rowSeedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	rowDownloadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	rowCheckStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
	cursorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	selectedMarkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true)
	progressFullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	progressEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	dialogStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208")).Padding(0, 1)
	pickerFrameStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("69")).Padding(0, 1)
	pickerActiveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("239")).Bold(true)
	pickerMatchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Underline(true)
)
