package widgets

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFilteredListSelectedIndexTracksOriginalItems(t *testing.T) {
	l := NewFilteredList("Sensors", []string{"ATT", "GPS", "MODE", "IMU"}, 80, 24)

	if got := l.SelectedIndex(); got != 0 {
		t.Fatalf("expected initial selection 0, got %d", got)
	}

	// Filter down to MODE and IMU
	l, _ = l.Update(typeRunes("/"))
	if !l.Filtering() {
		t.Fatal("expected filter input to be focused after /")
	}
	l, _ = l.Update(typeRunes("m"))

	if got := l.MatchCount(); got != 2 {
		t.Fatalf("expected 2 matches for 'm', got %d", got)
	}
	if got := l.SelectedIndex(); got != 2 {
		t.Fatalf("expected selection to map to original index 2 (MODE), got %d", got)
	}

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if l.Filtering() {
		t.Fatal("expected enter to close the filter input")
	}

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := l.SelectedIndex(); got != 3 {
		t.Fatalf("expected selection to map to original index 3 (IMU), got %d", got)
	}
}

func TestFilteredListEscResetsFilter(t *testing.T) {
	items := []string{"sensors_5_10_2023", "events_5_10_2023", "gps_7_7_2024"}
	l := NewFilteredList("Tables", items, 80, 24)

	l, _ = l.Update(typeRunes("/"))
	l, _ = l.Update(typeRunes("gps"))
	if got := l.MatchCount(); got != 1 {
		t.Fatalf("expected 1 match for 'gps', got %d", got)
	}

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if l.Filtering() {
		t.Fatal("expected esc to close the filter input")
	}
	if got := l.MatchCount(); got != len(items) {
		t.Fatalf("expected esc to restore all %d items, got %d", len(items), got)
	}
	if got := l.SelectedIndex(); got != 0 {
		t.Fatalf("expected selection reset to 0, got %d", got)
	}
}

func TestFilteredListFilterIsCaseInsensitive(t *testing.T) {
	l := NewFilteredList("Logs", []string{"FLIGHT_A", "flight_b", "bench"}, 80, 24)

	l, _ = l.Update(typeRunes("/"))
	l, _ = l.Update(typeRunes("FLIGHT"))

	if got := l.MatchCount(); got != 2 {
		t.Fatalf("expected case-insensitive match on 2 items, got %d", got)
	}
}

func TestFilteredListNoMatches(t *testing.T) {
	l := NewFilteredList("Logs", []string{"alpha", "beta"}, 80, 24)

	l, _ = l.Update(typeRunes("/"))
	l, _ = l.Update(typeRunes("zzz"))

	if got := l.MatchCount(); got != 0 {
		t.Fatalf("expected no matches, got %d", got)
	}
	if got := l.SelectedIndex(); got != -1 {
		t.Fatalf("expected SelectedIndex -1 with no matches, got %d", got)
	}
}

func TestFilteredListNavigationClampsAtEnds(t *testing.T) {
	l := NewFilteredList("Logs", []string{"one", "two", "three"}, 80, 24)

	for i := 0; i < 10; i++ {
		l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if got := l.SelectedIndex(); got != 2 {
		t.Fatalf("expected cursor clamped at last item, got %d", got)
	}

	for i := 0; i < 10; i++ {
		l, _ = l.Update(tea.KeyMsg{Type: tea.KeyUp})
	}
	if got := l.SelectedIndex(); got != 0 {
		t.Fatalf("expected cursor clamped at first item, got %d", got)
	}
}

func TestFilteredListLiveFilterResetsCursor(t *testing.T) {
	l := NewFilteredList("Logs", []string{"aa", "ab", "bb"}, 80, 24)

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := l.SelectedIndex(); got != 2 {
		t.Fatalf("expected selection on last item, got %d", got)
	}

	l, _ = l.Update(typeRunes("/"))
	l, _ = l.Update(typeRunes("a"))
	if got := l.SelectedIndex(); got != 0 {
		t.Fatalf("expected cursor reset to first match, got %d", got)
	}
}
