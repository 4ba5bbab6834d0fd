package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.detail.Width = m.detailWidth() - 4
		m.detail.Height = m.panelHeight() - 2
		m.detailReady = true
		m.syncDetail()

	case historyLoadedMsg:
		m.invocations = msg.items
		m.historyErr = msg.err
		if m.historyCursor >= len(m.invocations) {
			m.historyCursor = 0
		}
		if m.activeTab == TabHistory {
			m.syncDetail()
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

		if m.filtering {
			switch msg.String() {
			case "esc":
				m.filtering = false
				m.filter.Blur()
				m.filter.SetValue("")
				m.applyFilter()
				return m, nil
			case "enter":
				m.filtering = false
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Quit

		case "1":
			m.activeTab = TabTools
			m.focus = FocusList
			m.syncDetail()
		case "2":
			m.activeTab = TabHistory
			m.focus = FocusList
			m.syncDetail()

		case "tab":
			if m.focus == FocusList {
				m.focus = FocusDetail
			} else {
				m.focus = FocusList
			}

		case "/":
			if m.activeTab == TabTools {
				m.filtering = true
				m.filter.Focus()
				return m, nil
			}

		case "esc":
			if m.activeTab == TabTools && m.filter.Value() != "" {
				m.filter.SetValue("")
				m.applyFilter()
			}

		case "r":
			if m.activeTab == TabHistory {
				return m, loadHistory(m.db)
			}

		case "up", "k":
			if m.focus == FocusDetail {
				m.detail.LineUp(1)
			} else {
				m.moveCursor(-1)
			}
		case "down", "j":
			if m.focus == FocusDetail {
				m.detail.LineDown(1)
			} else {
				m.moveCursor(1)
			}
		}
	}

	var vpCmd tea.Cmd
	m.detail, vpCmd = m.detail.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) moveCursor(delta int) {
	switch m.activeTab {
	case TabTools:
		m.toolCursor = clamp(m.toolCursor+delta, 0, len(m.toolNames)-1)
	case TabHistory:
		m.historyCursor = clamp(m.historyCursor+delta, 0, len(m.invocations)-1)
	}
	m.syncDetail()
}

func (m *Model) applyFilter() {
	query := m.filter.Value()
	if query == "" {
		m.toolNames = m.registry.Names()
	} else {
		infos := m.registry.Search(query)
		names := make([]string, len(infos))
		for i, info := range infos {
			names[i] = info.Name
		}
		m.toolNames = names
	}
	m.toolCursor = 0
	m.syncDetail()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
