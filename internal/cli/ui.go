package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - activity
	colorGreen  = lipgloss.Color("35")  // Green - rendered
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - server errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links, commands
	colorWhite  = lipgloss.Color("255") // Bright white - paths, values
	colorGray   = lipgloss.Color("245") // Gray - labels
	colorDim    = lipgloss.Color("240") // Dim gray - details
)

var (
	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for paths and values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleLabel       = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Status Lines
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// status is an icon with its color.
type status struct {
	icon  string
	style lipgloss.Style
}

var (
	statusSuccess = status{iconSuccess, lipgloss.NewStyle().Foreground(colorGreen)}
	statusError   = status{iconError, lipgloss.NewStyle().Foreground(colorRed)}
	statusWarning = status{iconWarning, lipgloss.NewStyle().Foreground(colorYellow)}
	statusInfo    = status{iconInfo, lipgloss.NewStyle().Foreground(colorGray)}
)

func (s status) println(w io.Writer, msg string) {
	fmt.Fprintln(w, s.style.Render(s.icon)+" "+msg)
}

func printSuccess(w io.Writer, format string, args ...any) {
	statusSuccess.println(w, fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	statusError.println(w, fmt.Sprintf(format, args...))
}

// printWarning colors the message as well as the icon.
func printWarning(w io.Writer, format string, args ...any) {
	statusWarning.println(w, statusWarning.style.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	statusInfo.println(w, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints "  → path" for a file a command wrote.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests a command to run next.
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
