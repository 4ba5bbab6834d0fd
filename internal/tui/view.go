package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"azdo-cli/internal/textutil"
)

const (
	crust    = "#11111b"
	surface2 = "#585b70"
	overlay0 = "#6c7086"
	overlay1 = "#7f849c"

	mauve    = "#cba6f7"
	red      = "#f38ba8"
	green    = "#a6e3a1"
	yellow   = "#f9e2af"
	blue     = "#89b4fa"
	lavender = "#b4befe"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(crust)).
			Background(lipgloss.Color(mauve)).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(surface2)).
			Padding(0, 1)

	focusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(mauve)).
				Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(lavender))

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(crust)).
			Background(lipgloss.Color(blue)).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(overlay1)).
				Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(mauve))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(green))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(red))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(yellow))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(overlay0))
)

func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	title := titleStyle.Render("azdo-cli")
	tabs := m.renderTabBar()

	var list string
	switch m.activeTab {
	case TabTools:
		list = m.renderToolList(m.listWidth())
	case TabHistory:
		list = m.renderHistoryList(m.listWidth())
	}
	detail := m.renderDetailPanel(m.detailWidth())

	layout := lipgloss.JoinHorizontal(lipgloss.Top, list, detail)

	return fmt.Sprintf("\n%s  %s\n\n%s\n%s\n", title, tabs, layout, m.renderStatusLine())
}

func (m Model) renderStatusLine() string {
	focusLabel := "list"
	if m.focus == FocusDetail {
		focusLabel = "detail"
	}
	focus := dimStyle.Render(" │ [") + headerStyle.Render(focusLabel) + dimStyle.Render("]")
	return m.help.View(Keys) + focus
}

func (m Model) renderTabBar() string {
	tools := inactiveTabStyle.Render("[1] Tools")
	history := inactiveTabStyle.Render("[2] History")
	if m.activeTab == TabTools {
		tools = activeTabStyle.Render("[1] Tools")
	} else {
		history = activeTabStyle.Render("[2] History")
	}
	return tools + " " + history
}

func (m Model) renderToolList(width int) string {
	style := panelStyle.Width(width).Height(m.panelHeight())
	if m.focus == FocusList {
		style = focusedPanelStyle.Width(width).Height(m.panelHeight())
	}

	var content strings.Builder
	header := headerStyle.Render(fmt.Sprintf("Tools (%d)", len(m.toolNames)))
	content.WriteString(header + "\n")

	if m.filtering || m.filter.Value() != "" {
		content.WriteString(m.filter.View() + "\n")
	}
	content.WriteString("\n")

	if len(m.toolNames) == 0 {
		content.WriteString(dimStyle.Render("  No tools match"))
		return style.Render(content.String())
	}

	visible := m.panelHeight() - 4
	if visible < 3 {
		visible = 3
	}
	start := 0
	if m.toolCursor >= visible {
		start = m.toolCursor - visible + 1
	}

	for i := start; i < len(m.toolNames) && i < start+visible; i++ {
		name := m.toolNames[i]
		line := "  " + name
		if i == m.toolCursor {
			line = selectedStyle.Render("> " + name)
		}
		content.WriteString(line + "\n")
	}

	return style.Render(content.String())
}

func (m Model) renderHistoryList(width int) string {
	style := panelStyle.Width(width).Height(m.panelHeight())
	if m.focus == FocusList {
		style = focusedPanelStyle.Width(width).Height(m.panelHeight())
	}

	var content strings.Builder
	content.WriteString(headerStyle.Render("Recent calls") + "\n\n")

	switch {
	case m.db == nil:
		content.WriteString(warnStyle.Render("  History recording is disabled"))
	case m.historyErr != nil:
		content.WriteString(failStyle.Render("  " + m.historyErr.Error()))
	case len(m.invocations) == 0:
		content.WriteString(dimStyle.Render("  No invocations recorded yet"))
	default:
		visible := m.panelHeight() - 4
		if visible < 3 {
			visible = 3
		}
		start := 0
		if m.historyCursor >= visible {
			start = m.historyCursor - visible + 1
		}
		for i := start; i < len(m.invocations) && i < start+visible; i++ {
			item := m.invocations[i]
			icon := okStyle.Render("✓")
			if !item.OK {
				icon = failStyle.Render("✗")
			}
			name := textutil.TruncateWithEllipsis(item.Tool, width-12)
			stamp := item.Timestamp.Local().Format("15:04")
			line := fmt.Sprintf("%s %s %s", icon, dimStyle.Render(stamp), name)
			if i == m.historyCursor {
				line = selectedStyle.Render("> ") + line
			} else {
				line = "  " + line
			}
			content.WriteString(line + "\n")
		}
	}

	return style.Render(content.String())
}

func (m Model) renderDetailPanel(width int) string {
	style := panelStyle.Width(width).Height(m.panelHeight())
	if m.focus == FocusDetail {
		style = focusedPanelStyle.Width(width).Height(m.panelHeight())
	}

	header := headerStyle.Render("Details")
	if !m.detailReady {
		return style.Render(header + "\n\n" + dimStyle.Render("  Loading..."))
	}
	return style.Render(header + "\n" + m.detail.View())
}

func (m *Model) syncDetail() {
	if !m.detailReady {
		return
	}
	switch m.activeTab {
	case TabTools:
		m.detail.SetContent(m.toolDetail())
	case TabHistory:
		m.detail.SetContent(m.historyDetail())
	}
	m.detail.GotoTop()
}

func (m Model) toolDetail() string {
	if len(m.toolNames) == 0 || m.toolCursor >= len(m.toolNames) {
		return dimStyle.Render("No tool selected")
	}
	name := m.toolNames[m.toolCursor]
	op, ok := m.registry.Lookup(name)
	if !ok {
		return dimStyle.Render("No tool selected")
	}

	wrap := m.detailWidth() - 6
	if wrap < 20 {
		wrap = 20
	}

	var b strings.Builder
	b.WriteString(selectedStyle.Render(op.Name) + "\n")
	b.WriteString(dimStyle.Render(m.registry.Domain(name)) + "\n\n")
	b.WriteString(textutil.WrapText(op.Description, wrap) + "\n\n")
	b.WriteString(headerStyle.Render("Input schema") + "\n")

	schema, err := json.MarshalIndent(op.InputSchema(), "", "  ")
	if err != nil {
		b.WriteString(dimStyle.Render(err.Error()))
	} else {
		b.WriteString(string(schema))
	}
	return b.String()
}

func (m Model) historyDetail() string {
	if len(m.invocations) == 0 || m.historyCursor >= len(m.invocations) {
		return dimStyle.Render("No invocation selected")
	}
	item := m.invocations[m.historyCursor]

	status := okStyle.Render("ok")
	if !item.OK {
		status = failStyle.Render("failed")
	}

	var b strings.Builder
	b.WriteString(selectedStyle.Render(item.Tool) + "\n\n")
	b.WriteString(fmt.Sprintf("Time:     %s\n", item.Timestamp.Local().Format("15:04:05 Mon Jan 02")))
	b.WriteString(fmt.Sprintf("Duration: %dms\n", item.DurationMs))
	b.WriteString(fmt.Sprintf("Status:   %s\n", status))
	if item.Error != "" {
		wrap := m.detailWidth() - 6
		if wrap < 20 {
			wrap = 20
		}
		b.WriteString(failStyle.Render(textutil.WrapText(item.Error, wrap)) + "\n")
	}
	b.WriteString("\n" + headerStyle.Render("Arguments") + "\n")
	b.WriteString(prettyJSON(item.Arguments))
	return b.String()
}

func prettyJSON(raw string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err != nil {
		return raw
	}
	return buf.String()
}

func (m Model) listWidth() int {
	if m.activeTab == TabHistory {
		return 38
	}
	return 32
}

func (m Model) detailWidth() int {
	w := m.width - m.listWidth() - 4
	if w < 40 {
		w = 40
	}
	return w
}

func (m Model) panelHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}
