// Package render draws a core.View as a text tree for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/folio/pkg/core"
)

// Theme holds the styles used by Tree.
type Theme struct {
	Container lipgloss.Style
	Item      lipgloss.Style
	Active    lipgloss.Style
	Preview   lipgloss.Style
	Status    lipgloss.Style
	Unsaved   lipgloss.Style
}

// DefaultTheme is a muted palette readable on dark and light terminals.
func DefaultTheme() Theme {
	return Theme{
		Container: lipgloss.NewStyle().Bold(true),
		Item:      lipgloss.NewStyle(),
		Active:    lipgloss.NewStyle().Foreground(lipgloss.Color("#5f9fb0")).Bold(true),
		Preview:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d")),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d")).Italic(true),
		Unsaved:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f39c12")).Bold(true),
	}
}

// Tree renders containers in order, items under expanded containers, and a status line.
// Highlighting follows ids, never names.
func Tree(v core.View, theme Theme) string {
	var b strings.Builder
	for _, c := range v.Containers {
		marker := "▸"
		if c.Expanded {
			marker = "▾"
		}
		name := theme.Container.Render(c.Name)
		if c.ID == v.ActiveContainerID {
			name = theme.Active.Render(c.Name)
		}
		fmt.Fprintf(&b, "%s %s %s\n", marker, name, theme.Preview.Render(fmt.Sprintf("#%d (%d)", c.ID, len(c.Items))))
		if !c.Expanded {
			continue
		}
		for _, it := range c.Items {
			cursor := " "
			title := theme.Item.Render(it.Title)
			if it.ID == v.ActiveItemID {
				cursor = ">"
				title = theme.Active.Render(it.Title)
			}
			fmt.Fprintf(&b, "  %s %s %s\n", cursor, title, theme.Preview.Render(fmt.Sprintf("#%d", it.ID)))
			if p := v.Previews[it.ID]; p != "" {
				fmt.Fprintf(&b, "      %s\n", theme.Preview.Render(p))
			}
		}
	}
	b.WriteString(StatusLine(v.Status, theme))
	b.WriteString("\n")
	return b.String()
}

// StatusLine renders the editor save status.
func StatusLine(s core.EditorStatus, theme Theme) string {
	switch s {
	case core.StatusUnsaved:
		return theme.Unsaved.Render("● unsaved")
	case core.StatusSaved:
		return theme.Status.Render("✓ saved")
	default:
		return theme.Status.Render("ready")
	}
}

// Editor renders the active item buffers with a character count.
func Editor(title, content string, chars int, status core.EditorStatus, theme Theme) string {
	var b strings.Builder
	b.WriteString(theme.Container.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(lipgloss.Width(title), 8)))
	b.WriteString("\n")
	if content != "" {
		b.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "%s  %s\n", theme.Preview.Render(fmt.Sprintf("%d chars", chars)), StatusLine(status, theme))
	return b.String()
}
