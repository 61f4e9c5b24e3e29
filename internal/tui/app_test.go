package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lu-zhengda/aliases/internal/chat"
	"github.com/lu-zhengda/aliases/internal/domain"
)

type stubResolver struct {
	calls []string
}

func (s *stubResolver) Resolve(_ context.Context, username string) domain.LookupResult {
	s.calls = append(s.calls, username)
	return domain.LookupResult{Username: username, Outcome: domain.OutcomeInvalidUsername}
}

func newTestModel(r Resolver) model {
	m := NewModel(r, chat.ReportOptions{Location: time.UTC})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(model)
}

func typeText(m model, s string) model {
	for _, r := range s {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(model)
	}
	return m
}

func press(m model, t tea.KeyType) (model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: t})
	return updated.(model), cmd
}

func TestEnter_StartsLookup(t *testing.T) {
	r := &stubResolver{}
	m := typeText(newTestModel(r), "Notch")

	m, cmd := press(m, tea.KeyEnter)
	if !m.loading {
		t.Fatal("expected loading after enter")
	}
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if m.input.Value() != "" {
		t.Errorf("input = %q, want cleared", m.input.Value())
	}

	// Enter while a lookup is in flight is ignored.
	m = typeText(m, "jeb_")
	if _, cmd := press(m, tea.KeyEnter); cmd != nil {
		t.Error("expected no command while loading")
	}
}

func TestEnter_IgnoresEmptyInput(t *testing.T) {
	m := newTestModel(&stubResolver{})
	m, cmd := press(m, tea.KeyEnter)
	if m.loading || cmd != nil {
		t.Error("expected empty input to be ignored")
	}
}

func TestLookupCmd_CallsResolver(t *testing.T) {
	r := &stubResolver{}
	m := newTestModel(r)

	msg := m.lookupCmd("Notch")()
	done, ok := msg.(lookupDoneMsg)
	if !ok {
		t.Fatalf("msg = %T, want lookupDoneMsg", msg)
	}
	if len(r.calls) != 1 || r.calls[0] != "Notch" {
		t.Errorf("calls = %v, want [Notch]", r.calls)
	}
	if done.result.Outcome != domain.OutcomeInvalidUsername {
		t.Errorf("outcome = %v", done.result.Outcome)
	}
}

func TestLookupDone_ShowsReport(t *testing.T) {
	m := newTestModel(&stubResolver{})
	m.loading = true

	updated, _ := m.Update(lookupDoneMsg{result: domain.LookupResult{
		Username: "nobody",
		Outcome:  domain.OutcomeInvalidUsername,
	}})
	m = updated.(model)

	if m.loading {
		t.Error("expected loading to stop")
	}
	if !strings.Contains(m.output, chat.MsgInvalidUsername) {
		t.Errorf("output = %q, want it to contain %q", m.output, chat.MsgInvalidUsername)
	}
	if !m.statusBar.isError {
		t.Error("expected status bar error for a failed lookup")
	}
	if len(m.recent) != 1 || m.recent[0] != "nobody" {
		t.Errorf("recent = %v", m.recent)
	}
	if !strings.Contains(m.View(), chat.MsgInvalidUsername) {
		t.Error("view should include the report")
	}
}

func TestRemember_DedupesAndCaps(t *testing.T) {
	m := newTestModel(&stubResolver{})
	for _, name := range []string{"a1", "b2", "c3", "d4", "e5", "f6", "C3"} {
		m.remember(name)
	}
	want := []string{"C3", "f6", "e5", "d4", "b2"}
	if strings.Join(m.recent, ",") != strings.Join(want, ",") {
		t.Errorf("recent = %v, want %v", m.recent, want)
	}
}

func TestEsc_Clears(t *testing.T) {
	m := typeText(newTestModel(&stubResolver{}), "Notch")
	m.output = "old report"

	m, _ = press(m, tea.KeyEsc)
	if m.input.Value() != "" || m.output != "" {
		t.Errorf("input = %q, output = %q, want both cleared", m.input.Value(), m.output)
	}
}

func TestQ_QuitsOnlyWhenEmpty(t *testing.T) {
	m := newTestModel(&stubResolver{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	m = typeText(m, "Notch")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if got := updated.(model).input.Value(); got != "Notchq" {
		t.Errorf("input = %q, want %q", got, "Notchq")
	}
}
