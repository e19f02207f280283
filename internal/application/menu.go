package application

import (
	"context"
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/colarrange/internal/core"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func() tea.Cmd
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

// linkParents wires every submenu to its parent. A "Back" item returns to
// the parent; at the root it closes the menu.
func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == "Back" {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

/* ----------------------------------------
	ARRANGEMENTS MENU
---------------------------------------- */

// buildArrangementsMenu lists recommended arrangements first, with their
// match percentage, followed by the rest in stored order.
func buildArrangementsMenu(svc *core.Service, wsID string, all []core.Arrangement, matches []core.MatchResult) *Menu {
	root := &Menu{Title: "Saved Arrangements"}

	recommended := make(map[string]bool, len(matches))
	for _, r := range matches {
		recommended[r.Arrangement.ID] = true
		label := fmt.Sprintf("★ %s (%.0f%% match)", r.Arrangement.Name, math.Round(r.MatchPercentage))
		root.Items = append(root.Items, MenuItem{Label: label, Submenu: arrangementMenu(svc, wsID, r.Arrangement)})
	}
	for _, a := range all {
		if recommended[a.ID] {
			continue
		}
		root.Items = append(root.Items, MenuItem{Label: a.Name, Submenu: arrangementMenu(svc, wsID, a)})
	}
	if len(root.Items) == 0 {
		root.Items = append(root.Items, MenuItem{Label: "No saved arrangements"})
	}
	root.Items = append(root.Items, MenuItem{Label: "Back"})

	linkParents(root, nil)
	return root
}

func arrangementMenu(svc *core.Service, wsID string, a core.Arrangement) *Menu {
	return &Menu{
		Title: a.Name,
		Items: []MenuItem{
			{Label: "Apply", Action: func() tea.Cmd { return applyCmd(svc, wsID, a) }},
			{Label: "Delete", Action: func() tea.Cmd { return deleteCmd(svc, a) }},
			{Label: "Back"},
		},
	}
}

/* ----------------------------------------
	COMMANDS
---------------------------------------- */

func loadArrangementsCmd(svc *core.Service, model core.Model) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
		defer cancel()

		all, err := svc.ListArrangements(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return arrangementsMsg{all: all, matches: core.MatchArrangements(model.Columns, all)}
	}
}

func applyCmd(svc *core.Service, wsID string, a core.Arrangement) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
		defer cancel()

		ws, err := svc.ApplyToWorkspace(ctx, wsID, a.ID)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return workspaceMsg{ws: ws, note: fmt.Sprintf("Loaded arrangement %q", a.Name)}
	}
}

func deleteCmd(svc *core.Service, a core.Arrangement) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
		defer cancel()

		if err := svc.DeleteArrangement(ctx, a.ID); err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg(fmt.Sprintf("Deleted arrangement %q", a.Name))
	}
}

func saveCmd(svc *core.Service, wsID, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
		defer cancel()

		a, err := svc.SaveFromWorkspace(ctx, wsID, name)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg(fmt.Sprintf("Saved arrangement %q", a.Name))
	}
}
