// Package tui implements the interactive `catalyst init` wizard: a
// terminal UI for picking which embedded skills to install and whether
// to wire the activation/tracker hooks, in place of passing -skills and
// -no-hooks/-no-tracker flags by hand.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/basket/catalyst/internal/skills"
)

// WizardResult holds the choices made in the wizard, ready to populate
// initcmd.Config.
type WizardResult struct {
	Skills         []string
	InstallHooks   bool
	InstallTracker bool
}

type wizardStep int

const (
	stepSkills wizardStep = iota
	stepHooks
	stepReview
)

type skillOption struct {
	id          string
	name        string
	description string
}

type wizardModel struct {
	step     wizardStep
	cursor   int
	options  []skillOption
	selected map[string]bool

	installHooks   bool
	installTracker bool
	hookCursor     int // 0 = activation hook row, 1 = tracker hook row

	quitting bool
	done     bool
	result   *WizardResult
}

func newWizardModel(catalog *skills.EmbeddedCatalog) wizardModel {
	var opts []skillOption
	selected := map[string]bool{}
	for _, id := range catalog.IDs() {
		bundle, ok := catalog.Lookup(id)
		if !ok {
			continue
		}
		opts = append(opts, skillOption{id: id, name: bundle.Name, description: bundle.Description})
		selected[id] = true // every embedded skill starts selected, matching `init`'s -all default
	}
	return wizardModel{
		step:           stepSkills,
		options:        opts,
		selected:       selected,
		installHooks:   true,
		installTracker: true,
	}
}

func (m wizardModel) Init() tea.Cmd {
	return nil
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	key := keyMsg.String()

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.step {
	case stepSkills:
		return m.handleSkillsKey(key)
	case stepHooks:
		return m.handleHooksKey(key)
	case stepReview:
		return m.handleReviewKey(key)
	}
	return m, nil
}

func (m wizardModel) handleSkillsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case " ", "x":
		if len(m.options) > 0 {
			id := m.options[m.cursor].id
			m.selected[id] = !m.selected[id]
		}
	case "a":
		for _, opt := range m.options {
			m.selected[opt.id] = true
		}
	case "n":
		for _, opt := range m.options {
			m.selected[opt.id] = false
		}
	case "esc":
		m.quitting = true
		return m, tea.Quit
	case "enter", "ctrl+m", "ctrl+j":
		m.step = stepHooks
		m.hookCursor = 0
	}
	return m, nil
}

func (m wizardModel) handleHooksKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.hookCursor > 0 {
			m.hookCursor--
		}
	case "down", "j":
		if m.hookCursor < 1 {
			m.hookCursor++
		}
	case " ", "x":
		if m.hookCursor == 0 {
			m.installHooks = !m.installHooks
		} else {
			m.installTracker = !m.installTracker
		}
	case "esc":
		m.step = stepSkills
	case "enter", "ctrl+m", "ctrl+j":
		m.step = stepReview
	}
	return m, nil
}

func (m wizardModel) handleReviewKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.step = stepHooks
	case "enter", "ctrl+m", "ctrl+j":
		m.done = true
		m.result = &WizardResult{
			Skills:         m.selectedIDs(),
			InstallHooks:   m.installHooks,
			InstallTracker: m.installTracker,
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m wizardModel) selectedIDs() []string {
	var ids []string
	for _, opt := range m.options {
		if m.selected[opt.id] {
			ids = append(ids, opt.id)
		}
	}
	return ids
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	focusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

func (m wizardModel) View() string {
	if m.quitting {
		return "  catalyst init cancelled.\n"
	}
	if m.done {
		return "  Starting catalyst init...\n"
	}

	var b strings.Builder
	switch m.step {
	case stepSkills:
		b.WriteString(titleStyle.Render("  Step 1/3 — Skills to install") + "\n\n")
		for i, opt := range m.options {
			box := "[ ]"
			if m.selected[opt.id] {
				box = "[x]"
			}
			cursor := "  "
			line := fmt.Sprintf("  %s%s %s", cursor, box, opt.name)
			if opt.description != "" {
				line += "  " + dimStyle.Render(opt.description)
			}
			if i == m.cursor {
				line = focusStyle.Render(fmt.Sprintf("  > %s %s", box, opt.name))
				if opt.description != "" {
					line += "  " + dimStyle.Render(opt.description)
				}
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n" + helpStyle.Render("  space toggle · a all · n none · enter continue · esc cancel") + "\n")

	case stepHooks:
		b.WriteString(titleStyle.Render("  Step 2/3 — Hooks to wire") + "\n\n")
		b.WriteString(renderHookRow(0, m.hookCursor, m.installHooks, "Activation hook", "auto-activates skills on prompt submit") + "\n")
		b.WriteString(renderHookRow(1, m.hookCursor, m.installTracker, "Tracker hook", "records file edits for session summaries") + "\n")
		b.WriteString("\n" + helpStyle.Render("  space toggle · enter continue · esc back") + "\n")

	case stepReview:
		b.WriteString(titleStyle.Render("  Step 3/3 — Review") + "\n\n")
		b.WriteString(fmt.Sprintf("  Skills:  %s\n", strings.Join(m.selectedIDs(), ", ")))
		b.WriteString(fmt.Sprintf("  Hooks:   activation=%t tracker=%t\n", m.installHooks, m.installTracker))
		b.WriteString("\n" + helpStyle.Render("  enter confirm · esc back") + "\n")
	}
	return b.String()
}

func renderHookRow(row, cursor int, enabled bool, label, desc string) string {
	box := "[ ]"
	if enabled {
		box = "[x]"
	}
	line := fmt.Sprintf("  %s %s  %s", box, label, dimStyle.Render(desc))
	if row == cursor {
		line = focusStyle.Render(fmt.Sprintf("  > %s %s", box, label)) + "  " + dimStyle.Render(desc)
	}
	return line
}

// RunWizard drives the interactive skill/hook selection and returns the
// choices, or an error if the wizard is cancelled or ctx is done first.
func RunWizard(ctx context.Context, catalog *skills.EmbeddedCatalog) (*WizardResult, error) {
	defer bestEffortResetTTY()

	m := newWizardModel(catalog)
	p := tea.NewProgram(m)

	done := make(chan error, 1)
	var finalModel tea.Model
	go func() {
		var err error
		finalModel, err = p.Run()
		done <- err
	}()

	select {
	case <-ctx.Done():
		p.Quit()
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, err
		}
	}

	wm, ok := finalModel.(wizardModel)
	if !ok || wm.quitting || wm.result == nil {
		return nil, fmt.Errorf("catalyst init wizard cancelled")
	}
	return wm.result, nil
}
