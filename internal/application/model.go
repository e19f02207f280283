// Package application is the terminal UI for arranging one file's columns.
package application

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/JonMunkholm/colarrange/internal/core"
	"github.com/JonMunkholm/colarrange/internal/export"
)

// CommandTimeout bounds each storage call made from the UI.
var CommandTimeout = 30 * time.Second

// maxNameWidth caps the column-name field in the list.
const maxNameWidth = 32

var errNotCustom = errors.New("only custom columns can be deleted")

type DoneMsg string
type ErrMsg struct{ Err error }

type workspaceMsg struct {
	ws   core.Workspace
	note string
}

type arrangementsMsg struct {
	all     []core.Arrangement
	matches []core.MatchResult
}

type mode int

const (
	modeColumns mode = iota
	modeInput
	modeMenu
)

type inputPurpose int

const (
	inputRename inputPurpose = iota
	inputSave
)

type Model struct {
	service *core.Service
	ws      core.Workspace
	outDir  string

	mode       mode
	cursor     int
	input      textinput.Model
	purpose    inputPurpose
	menu       *Menu
	menuCursor int

	status   string
	err      error
	width    int
	height   int
	quitting bool
}

// New builds the UI for an open workspace. Exports are written to outDir.
func New(svc *core.Service, ws core.Workspace, outDir string) Model {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40

	m := Model{
		service: svc,
		ws:      ws,
		outDir:  outDir,
		input:   ti,
	}
	if n := len(ws.Matches); n > 0 {
		m.status = fmt.Sprintf("%d recommended arrangement(s), press l to view", n)
	}
	return m
}

// Run opens the UI full-screen and blocks until the user quits.
func Run(svc *core.Service, ws core.Workspace, outDir string) error {
	_, err := tea.NewProgram(New(svc, ws, outDir), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Workspace returns the workspace as last seen by the UI.
func (m Model) Workspace() core.Workspace {
	return m.ws
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeMenu:
			return m.updateMenu(msg)
		default:
			return m.updateColumns(msg)
		}

	case workspaceMsg:
		return m.apply(msg.ws, nil, msg.note), nil

	case arrangementsMsg:
		m.menu = buildArrangementsMenu(m.service, m.ws.ID, msg.all, msg.matches)
		m.menuCursor = 0
		m.mode = modeMenu
		return m, nil

	case DoneMsg:
		m.status = string(msg)
		m.err = nil
		return m, nil

	case ErrMsg:
		m.status = ""
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// apply records the outcome of a workspace change.
func (m Model) apply(ws core.Workspace, err error, note string) Model {
	if err != nil {
		m.status = ""
		m.err = err
		return m
	}
	m.ws = ws
	m.err = nil
	m.status = note
	m.cursor = max(0, min(m.cursor, len(ws.Model.Columns)-1))
	return m
}

func (m Model) updateColumns(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.ws.Model.Columns
	id := m.ws.ID

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(cols)-1 {
			m.cursor++
		}

	case "K", "shift+up":
		if m.cursor > 0 {
			ws, err := m.service.ReorderColumn(id, m.cursor, m.cursor-1)
			m = m.apply(ws, err, "")
			if err == nil {
				m.cursor--
			}
		}
	case "J", "shift+down":
		if m.cursor < len(cols)-1 {
			ws, err := m.service.ReorderColumn(id, m.cursor, m.cursor+1)
			m = m.apply(ws, err, "")
			if err == nil {
				m.cursor++
			}
		}

	case " ":
		if len(cols) > 0 {
			ws, err := m.service.ToggleColumn(id, m.cursor)
			m = m.apply(ws, err, "")
		}

	case "a":
		ws, err := m.service.AddColumn(id)
		m = m.apply(ws, err, "Added custom column")
		if err == nil {
			m.cursor = len(ws.Model.Columns) - 1
		}

	case "d":
		if len(cols) == 0 {
			break
		}
		if !cols[m.cursor].IsCustom {
			m.status = ""
			m.err = errNotCustom
			break
		}
		ws, err := m.service.DeleteColumn(id, m.cursor)
		m = m.apply(ws, err, fmt.Sprintf("Deleted %q", cols[m.cursor].Name))

	case "r":
		if len(cols) > 0 {
			return m.startInput(inputRename, cols[m.cursor].Name)
		}

	case "R":
		ws, err := m.service.ResetColumns(id)
		m = m.apply(ws, err, "Columns reset to the uploaded order")

	case "s":
		return m.startInput(inputSave, "")

	case "l":
		return m, loadArrangementsCmd(m.service, m.ws.Model)

	case "e":
		return m, exportCSVCmd(m.ws.Model, m.outDir)
	case "x":
		return m, exportXLSXCmd(m.ws.Model, m.outDir)
	}

	return m, nil
}

func (m Model) startInput(p inputPurpose, value string) (tea.Model, tea.Cmd) {
	m.mode = modeInput
	m.purpose = p
	m.input.SetValue(value)
	m.input.CursorEnd()
	if p == inputSave {
		m.input.Placeholder = "Arrangement name"
	} else {
		m.input.Placeholder = "Column name"
	}
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeColumns
		m.input.Blur()
		return m, nil

	case "enter":
		value := m.input.Value()
		m.mode = modeColumns
		m.input.Blur()

		if m.purpose == inputSave {
			return m, saveCmd(m.service, m.ws.ID, value)
		}
		ws, err := m.service.RenameColumn(m.ws.ID, m.cursor, value)
		return m.apply(ws, err, "Column renamed"), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.menu.Items

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "down", "j":
		if m.menuCursor < len(items)-1 {
			m.menuCursor++
		}

	case "esc", "backspace":
		return m.openMenu(m.menu.Parent), nil

	case "enter":
		item := items[m.menuCursor]
		switch {
		case item.Label == "Back", item.Submenu != nil:
			return m.openMenu(item.Submenu), nil
		case item.Action != nil:
			m = m.openMenu(nil)
			return m, item.Action()
		}
	}

	return m, nil
}

// openMenu shows menu, or returns to the column list when menu is nil.
func (m Model) openMenu(menu *Menu) Model {
	m.menu = menu
	m.menuCursor = 0
	if menu == nil {
		m.mode = modeColumns
	}
	return m
}

func exportCSVCmd(model core.Model, outDir string) tea.Cmd {
	return func() tea.Msg {
		if model.Empty() {
			return ErrMsg{Err: core.ErrNoCSVLoaded}
		}
		path := filepath.Join(outDir, core.ExportName(filepath.Base(model.FileName)))
		if err := os.WriteFile(path, []byte(core.Serialize(model)), 0o644); err != nil {
			return ErrMsg{Err: fmt.Errorf("write %s: %w", path, err)}
		}
		return DoneMsg("Exported " + path)
	}
}

func exportXLSXCmd(model core.Model, outDir string) tea.Cmd {
	return func() tea.Msg {
		if model.Empty() {
			return ErrMsg{Err: core.ErrNoCSVLoaded}
		}
		path := filepath.Join(outDir, export.XLSXName(filepath.Base(model.FileName)))
		f, err := os.Create(path)
		if err != nil {
			return ErrMsg{Err: err}
		}
		if err := export.WriteXLSX(f, model); err != nil {
			f.Close()
			return ErrMsg{Err: err}
		}
		if err := f.Close(); err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg("Exported " + path)
	}
}

/* ----------------------------------------
	VIEW
---------------------------------------- */

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(TitleStyle.Render("CSV Column Arranger"))
	s.WriteString("\n")
	model := m.ws.Model
	name := model.FileName
	if name == "" {
		name = "(unnamed)"
	}
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("File: %s • %d columns • %d rows",
		name, len(model.Columns), len(model.Rows))))
	s.WriteString("\n\n")

	if m.mode == modeMenu && m.menu != nil {
		s.WriteString(m.viewMenu())
	} else {
		s.WriteString(m.viewColumns())
	}

	if m.mode == modeInput {
		label := "Rename column: "
		if m.purpose == inputSave {
			label = "Save arrangement as: "
		}
		s.WriteString("\n" + label + m.input.View() + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + ErrorStyle.Render(errorText(m.err)) + "\n")
	} else if m.status != "" {
		s.WriteString("\n" + SuccessStyle.Render(m.status) + "\n")
	}

	s.WriteString(HelpStyle.Render(m.help()))

	return BoxStyle.Render(s.String())
}

func (m Model) viewColumns() string {
	model := m.ws.Model
	if model.Empty() {
		return SubtitleStyle.Render("No CSV loaded") + "\n"
	}

	width := 0
	for _, c := range model.Columns {
		width = max(width, runewidth.StringWidth(c.Name))
	}
	width = min(width, maxNameWidth)

	var sample []string
	if len(model.Rows) > 0 {
		sample = model.Rows[0]
	}

	var s strings.Builder
	for i, c := range model.Columns {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		check := "✓"
		if c.Excluded {
			check = " "
		}

		label := runewidth.FillRight(runewidth.Truncate(c.Name, width, "…"), width)
		detail := runewidth.Truncate(core.Cell(sample, c), 30, "…")
		if c.IsCustom {
			detail = CustomStyle.Render("(custom)")
		}

		line := fmt.Sprintf("%s [%s] %s  %s", cursor, check, label, detail)
		switch {
		case m.cursor == i:
			line = SelectedStyle.Render(line)
		case c.Excluded:
			line = ExcludedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder
	s.WriteString(MatchStyle.Render(m.menu.Title))
	s.WriteString("\n\n")
	for i, item := range m.menu.Items {
		line := "  " + item.Label
		if i == m.menuCursor {
			line = SelectedStyle.Render("> " + item.Label)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) help() string {
	switch m.mode {
	case modeInput:
		return "enter: confirm • esc: cancel"
	case modeMenu:
		return "↑/↓: navigate • enter: select • esc: back • q: quit"
	}
	return "↑/↓: move • K/J: shift column • space: include/exclude • a: add • d: delete custom • " +
		"r: rename • R: reset • s: save • l: arrangements • e: csv • x: xlsx • q: quit"
}

// errorText prefers the mapped user message when there is one.
func errorText(err error) string {
	if core.IsUserFacing(err) {
		msg := core.MapError(err)
		return msg.Message + ". " + msg.Action
	}
	return err.Error()
}
