package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"azdo-cli/internal/tools"
)

func testModel() Model {
	return InitialModel(tools.Catalog(), nil)
}

func TestInitialModel(t *testing.T) {
	model := testModel()

	if model.activeTab != TabTools {
		t.Errorf("expected TabTools as initial tab, got %v", model.activeTab)
	}
	if model.focus != FocusList {
		t.Errorf("expected FocusList, got %v", model.focus)
	}
	if len(model.toolNames) == 0 {
		t.Error("tool list should start populated")
	}
	if model.quitting {
		t.Error("quitting should be false initially")
	}
}

func TestModel_TabSwitching(t *testing.T) {
	model := testModel()

	newModel, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	m := newModel.(Model)
	if m.activeTab != TabHistory {
		t.Errorf("expected TabHistory after 2, got %v", m.activeTab)
	}

	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	m = newModel.(Model)
	if m.activeTab != TabTools {
		t.Errorf("expected TabTools after 1, got %v", m.activeTab)
	}
}

func TestModel_QuitOnCtrlC(t *testing.T) {
	model := testModel()

	newModel, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m := newModel.(Model)

	if !m.quitting {
		t.Error("quitting should be true after Ctrl+C")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestModel_CursorMovement(t *testing.T) {
	model := testModel()
	model.width = 120
	model.height = 40

	newModel, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m := newModel.(Model)
	if m.toolCursor != 1 {
		t.Errorf("expected cursor 1 after j, got %d", m.toolCursor)
	}

	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	m = newModel.(Model)
	if m.toolCursor != 0 {
		t.Errorf("expected cursor 0 after k, got %d", m.toolCursor)
	}

	// Cursor never leaves the list.
	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	m = newModel.(Model)
	if m.toolCursor != 0 {
		t.Errorf("cursor should clamp at 0, got %d", m.toolCursor)
	}
}

func TestModel_Filter(t *testing.T) {
	model := testModel()

	model.filter.SetValue("wiql")
	model.applyFilter()

	if len(model.toolNames) == 0 {
		t.Fatal("filter wiql should match query_work_items")
	}
	for _, name := range model.toolNames {
		if name == "query_work_items" {
			return
		}
	}
	t.Errorf("expected query_work_items in %v", model.toolNames)
}

func TestModel_FilterCleared(t *testing.T) {
	model := testModel()
	total := len(model.toolNames)

	model.filter.SetValue("build")
	model.applyFilter()
	if len(model.toolNames) >= total {
		t.Error("filter should narrow the list")
	}

	model.filter.SetValue("")
	model.applyFilter()
	if len(model.toolNames) != total {
		t.Errorf("clearing the filter should restore all %d tools, got %d", total, len(model.toolNames))
	}
}

func TestModel_ViewRenders(t *testing.T) {
	model := testModel()
	newModel, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m := newModel.(Model)

	view := m.View()
	if !strings.Contains(view, "azdo-cli") {
		t.Error("view should carry the title")
	}
	if !strings.Contains(view, "list_projects") {
		t.Error("view should list the first tool")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want int
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{3, 0, -1, 0},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
