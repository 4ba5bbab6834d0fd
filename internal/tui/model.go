package tui

import (
	"database/sql"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"azdo-cli/internal/storage"
	"azdo-cli/internal/tools"
)

type Tab int

const (
	TabTools Tab = iota
	TabHistory
)

type FocusPanel int

const (
	FocusList FocusPanel = iota
	FocusDetail
)

type Model struct {
	activeTab Tab
	focus     FocusPanel
	width     int
	height    int
	quitting  bool
	help      help.Model

	registry *tools.Registry

	// Tools tab state
	filter      textinput.Model
	filtering   bool
	toolNames   []string
	toolCursor  int
	detail      viewport.Model
	detailReady bool

	// History tab state
	db            *sql.DB
	invocations   []storage.InvocationRow
	historyCursor int
	historyErr    error
}

type historyLoadedMsg struct {
	items []storage.InvocationRow
	err   error
}

func InitialModel(registry *tools.Registry, db *sql.DB) Model {
	ti := textinput.New()
	ti.Placeholder = "filter tools... (press / to search)"
	ti.CharLimit = 64
	ti.Width = 40

	return Model{
		activeTab: TabTools,
		focus:     FocusList,
		help:      NewHelp(),
		registry:  registry,
		filter:    ti,
		toolNames: registry.Names(),
		detail:    viewport.New(0, 0),
		db:        db,
	}
}

func (m Model) Init() tea.Cmd {
	return loadHistory(m.db)
}

func loadHistory(db *sql.DB) tea.Cmd {
	return func() tea.Msg {
		if db == nil {
			return historyLoadedMsg{}
		}
		items, err := storage.GetRecentInvocations(db, 100)
		return historyLoadedMsg{items: items, err: err}
	}
}
