package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

// HelpOps drives the external help pager
type HelpOps struct {
	program *tea.Program
}

// NewHelpOps creates a help pager driver
func NewHelpOps() *HelpOps {
	return &HelpOps{}
}

// SetProgram sets the Bubble Tea program used for terminal handover
func (h *HelpOps) SetProgram(p *tea.Program) {
	h.program = p
}

// RenderHelpContent generates the key binding reference shown in the pager
func RenderHelpContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder

	help.WriteString(titleStyle.Render("Badgeline Help"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Editing"))
	help.WriteString("\n")
	help.WriteString(fmt.Sprintf("  %s      %s\n", keyStyle.Render("any char"), descStyle.Render("Type into the active badge")))
	help.WriteString(fmt.Sprintf("  %s     %s\n", keyStyle.Render("delimiter"), descStyle.Render("Split the badge at the cursor")))
	help.WriteString(fmt.Sprintf("  %s     %s\n", keyStyle.Render("Backspace"), descStyle.Render("Delete left of the cursor")))
	help.WriteString(fmt.Sprintf("  %s        %s\n", keyStyle.Render("Delete"), descStyle.Render("Delete under the cursor")))
	help.WriteString(fmt.Sprintf("  %s         %s\n", keyStyle.Render("Enter"), descStyle.Render("Commit the badge, move to the tail gap")))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Navigation"))
	help.WriteString("\n")
	help.WriteString(fmt.Sprintf("  %s           %s\n", keyStyle.Render("←/→"), descStyle.Render("Move the cursor, cross badge boundaries")))
	help.WriteString(fmt.Sprintf("  %s      %s\n", keyStyle.Render("Home/End"), descStyle.Render("Jump inside the active badge")))
	help.WriteString(fmt.Sprintf("  %s           %s\n", keyStyle.Render("Esc"), descStyle.Render("Blur (commit the active badge)")))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Bulk"))
	help.WriteString("\n")
	help.WriteString(fmt.Sprintf("  %s        %s\n", keyStyle.Render("Ctrl+E"), descStyle.Render("Edit the whole line as raw text")))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Other"))
	help.WriteString("\n")
	help.WriteString(fmt.Sprintf("  %s        %s\n", keyStyle.Render("Ctrl+O"), descStyle.Render("Show this help")))
	help.WriteString(fmt.Sprintf("  %s        %s", keyStyle.Render("Ctrl+C"), descStyle.Render("Quit")))

	return help.String()
}

// ShowHelpInPager displays the help content in the ov pager, handing the
// terminal over and restoring it afterwards
func (h *HelpOps) ShowHelpInPager(helpContent string) error {
	if h.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}

	// Ensure terminal is restored even if ov fails
	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	reader := strings.NewReader(helpContent)

	root, err := oviewer.NewRoot(reader)
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
