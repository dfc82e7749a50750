package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/basket/catalyst/internal/skills"
)

func loadTestCatalog(t *testing.T) *skills.EmbeddedCatalog {
	t.Helper()
	catalog, err := skills.LoadEmbeddedCatalog()
	if err != nil {
		t.Fatalf("LoadEmbeddedCatalog: %v", err)
	}
	return catalog
}

func TestNewWizardModelSelectsAllSkillsByDefault(t *testing.T) {
	catalog := loadTestCatalog(t)
	m := newWizardModel(catalog)

	if len(m.options) != len(catalog.IDs()) {
		t.Fatalf("options = %d, want %d", len(m.options), len(catalog.IDs()))
	}
	for _, opt := range m.options {
		if !m.selected[opt.id] {
			t.Fatalf("skill %q should start selected", opt.id)
		}
	}
	if m.step != stepSkills || !m.installHooks || !m.installTracker {
		t.Fatalf("unexpected initial model state: %+v", m)
	}
}

func TestWizardSkillsStepToggleAndNavigate(t *testing.T) {
	catalog := loadTestCatalog(t)
	m := newWizardModel(catalog)
	if len(m.options) == 0 {
		t.Fatal("expected at least one embedded skill")
	}
	first := m.options[0].id

	mNext, _ := m.handleSkillsKey(" ")
	m = mNext.(wizardModel)
	if m.selected[first] {
		t.Fatalf("space should have deselected %q", first)
	}

	mNext, _ = m.handleSkillsKey("n")
	m = mNext.(wizardModel)
	for _, opt := range m.options {
		if m.selected[opt.id] {
			t.Fatalf("n should deselect every skill, %q still selected", opt.id)
		}
	}

	mNext, _ = m.handleSkillsKey("a")
	m = mNext.(wizardModel)
	for _, opt := range m.options {
		if !m.selected[opt.id] {
			t.Fatalf("a should select every skill, %q not selected", opt.id)
		}
	}

	mNext, _ = m.handleSkillsKey("enter")
	m = mNext.(wizardModel)
	if m.step != stepHooks {
		t.Fatalf("enter on skills step should advance to stepHooks, got %v", m.step)
	}
}

func TestWizardHooksStepToggleAndBack(t *testing.T) {
	catalog := loadTestCatalog(t)
	m := newWizardModel(catalog)
	m.step = stepHooks

	mNext, _ := m.handleHooksKey(" ")
	m = mNext.(wizardModel)
	if m.installHooks {
		t.Fatal("space on hook row 0 should toggle installHooks off")
	}

	mNext, _ = m.handleHooksKey("down")
	m = mNext.(wizardModel)
	if m.hookCursor != 1 {
		t.Fatalf("hookCursor = %d, want 1", m.hookCursor)
	}
	mNext, _ = m.handleHooksKey(" ")
	m = mNext.(wizardModel)
	if m.installTracker {
		t.Fatal("space on hook row 1 should toggle installTracker off")
	}

	mNext, _ = m.handleHooksKey("esc")
	m = mNext.(wizardModel)
	if m.step != stepSkills {
		t.Fatalf("esc on hooks step should return to stepSkills, got %v", m.step)
	}
}

func TestWizardReviewStepProducesResult(t *testing.T) {
	catalog := loadTestCatalog(t)
	m := newWizardModel(catalog)
	m.step = stepReview
	m.installTracker = false

	mNext, cmd := m.handleReviewKey("enter")
	m = mNext.(wizardModel)
	if !m.done || m.result == nil {
		t.Fatal("enter on review step should set done and populate result")
	}
	if cmd == nil {
		t.Fatal("expected tea.Quit command")
	}
	if len(m.result.Skills) != len(catalog.IDs()) {
		t.Fatalf("result.Skills = %v, want every catalog id", m.result.Skills)
	}
	if !m.result.InstallHooks || m.result.InstallTracker {
		t.Fatalf("unexpected result hooks: %+v", m.result)
	}
}

func TestWizardCtrlCQuits(t *testing.T) {
	catalog := loadTestCatalog(t)
	m := newWizardModel(catalog)

	mNext, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = mNext.(wizardModel)
	if !m.quitting {
		t.Fatal("ctrl+c should set quitting")
	}
	if cmd == nil {
		t.Fatal("expected tea.Quit command")
	}
}

func TestWizardViewRendersEachStep(t *testing.T) {
	catalog := loadTestCatalog(t)
	m := newWizardModel(catalog)

	for _, step := range []wizardStep{stepSkills, stepHooks, stepReview} {
		m.step = step
		if out := m.View(); out == "" {
			t.Fatalf("View() for step %v returned empty string", step)
		}
	}
}
