package game

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func dealFor(t *testing.T, names []string, counts RoleCounts) *Assignment {
	t.Helper()
	assigner := NewAssigner(DefaultRegistry(), WithRandomSeed(1))
	assignment, err := assigner.Assign(counts, len(names), names)
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	return assignment
}

func TestNewSessionStartsInSetup(t *testing.T) {
	session := NewSession("ABCDE", "token123")

	if session.Code != "ABCDE" {
		t.Errorf("Code = %q, want ABCDE", session.Code)
	}
	if session.FacilitatorToken != "token123" {
		t.Errorf("FacilitatorToken = %q, want token123", session.FacilitatorToken)
	}
	if session.State() != StateSetup {
		t.Errorf("State() = %s, want setup", session.State())
	}
	if session.CreatedAt().IsZero() || session.LastActive().IsZero() {
		t.Error("timestamps not initialized")
	}

	view := session.SetupView()
	if len(view.Names) != 0 || view.Counts.Total() != 0 || view.Acknowledged {
		t.Errorf("fresh SetupView = %+v, want empty configuration", view)
	}
}

func TestSetSetupCopiesInputs(t *testing.T) {
	session := NewSession("ABCDE", "tok")

	names := []string{"Ana", "Luka"}
	counts := RoleCounts{RoleMafia: 1}
	session.SetSetup(names, counts, true)

	// Mutating the caller's values must not reach the session.
	names[0] = "Mangled"
	counts[RoleMafia] = 99

	view := session.SetupView()
	if view.Names[0] != "Ana" {
		t.Errorf("Names[0] = %q, want Ana", view.Names[0])
	}
	if view.Counts[RoleMafia] != 1 {
		t.Errorf("Counts[mafia] = %d, want 1", view.Counts[RoleMafia])
	}
	if !view.Acknowledged {
		t.Error("Acknowledged = false, want true")
	}

	// And the view's values must be copies too.
	view.Names[0] = "Mangled"
	view.Counts[RoleMafia] = 99
	again := session.SetupView()
	if again.Names[0] != "Ana" || again.Counts[RoleMafia] != 1 {
		t.Error("mutating a SetupView reached the session")
	}
}

func TestRevealWalk(t *testing.T) {
	names := []string{"Ana", "Luka", "Mira"}
	session := NewSession("ABCDE", "tok")
	session.SetSetup(names, RoleCounts{RoleMafia: 1}, false)

	if err := session.BeginReveal(dealFor(t, names, RoleCounts{RoleMafia: 1})); err != nil {
		t.Fatalf("BeginReveal() error = %v", err)
	}
	if session.State() != StateRevealing {
		t.Fatalf("State() = %s, want revealing", session.State())
	}

	view, err := session.RevealView()
	if err != nil {
		t.Fatalf("RevealView() error = %v", err)
	}
	if view.Index != 0 || view.Total != 3 || view.Shown || view.RevealedCount != 0 {
		t.Errorf("initial RevealView = %+v", view)
	}
	if view.Current.Name != "Ana" {
		t.Errorf("Current.Name = %q, want Ana", view.Current.Name)
	}

	for i, name := range names {
		current, err := session.ShowCurrent()
		if err != nil {
			t.Fatalf("ShowCurrent() at %d error = %v", i, err)
		}
		if current.Name != name {
			t.Errorf("ShowCurrent() at %d = %q, want %q", i, current.Name, name)
		}
		if !current.Revealed {
			t.Errorf("ShowCurrent() at %d did not flip Revealed", i)
		}

		view, err := session.RevealView()
		if err != nil {
			t.Fatalf("RevealView() at %d error = %v", i, err)
		}
		if !view.Shown || view.RevealedCount != i+1 {
			t.Errorf("RevealView() at %d = Shown %v, RevealedCount %d", i, view.Shown, view.RevealedCount)
		}

		done, err := session.AdvanceReveal()
		if err != nil {
			t.Fatalf("AdvanceReveal() at %d error = %v", i, err)
		}
		if wantDone := i == len(names)-1; done != wantDone {
			t.Errorf("AdvanceReveal() at %d = %v, want %v", i, done, wantDone)
		}
	}

	if session.State() != StateComplete {
		t.Errorf("State() after walk = %s, want complete", session.State())
	}
	if _, err := session.RevealView(); !errors.Is(err, ErrRevealComplete) {
		t.Errorf("RevealView() after walk error = %v, want ErrRevealComplete", err)
	}
	if _, err := session.ShowCurrent(); !errors.Is(err, ErrNotRevealing) {
		t.Errorf("ShowCurrent() after walk error = %v, want ErrNotRevealing", err)
	}
	if _, err := session.AdvanceReveal(); !errors.Is(err, ErrNotRevealing) {
		t.Errorf("AdvanceReveal() after walk error = %v, want ErrNotRevealing", err)
	}
}

func TestShowCurrentIsMonotonic(t *testing.T) {
	names := []string{"Ana", "Luka"}
	session := NewSession("ABCDE", "tok")
	if err := session.BeginReveal(dealFor(t, names, RoleCounts{RoleMafia: 1})); err != nil {
		t.Fatalf("BeginReveal() error = %v", err)
	}

	if _, err := session.ShowCurrent(); err != nil {
		t.Fatalf("ShowCurrent() error = %v", err)
	}
	if _, err := session.ShowCurrent(); err != nil {
		t.Fatalf("second ShowCurrent() error = %v", err)
	}

	view, err := session.RevealView()
	if err != nil {
		t.Fatalf("RevealView() error = %v", err)
	}
	if view.RevealedCount != 1 {
		t.Errorf("RevealedCount = %d after showing the same card twice, want 1", view.RevealedCount)
	}
}

func TestRevealCallsOutsideRevealState(t *testing.T) {
	session := NewSession("ABCDE", "tok")

	if _, err := session.RevealView(); !errors.Is(err, ErrNotRevealing) {
		t.Errorf("RevealView() in setup error = %v, want ErrNotRevealing", err)
	}
	if _, err := session.ShowCurrent(); !errors.Is(err, ErrNotRevealing) {
		t.Errorf("ShowCurrent() in setup error = %v, want ErrNotRevealing", err)
	}
	if _, err := session.AdvanceReveal(); !errors.Is(err, ErrNotRevealing) {
		t.Errorf("AdvanceReveal() in setup error = %v, want ErrNotRevealing", err)
	}
}

func TestBeginRevealRejectsEmptyAssignments(t *testing.T) {
	session := NewSession("ABCDE", "tok")

	if err := session.BeginReveal(nil); !errors.Is(err, ErrNoAssignment) {
		t.Errorf("BeginReveal(nil) error = %v, want ErrNoAssignment", err)
	}
	if err := session.BeginReveal(&Assignment{}); !errors.Is(err, ErrNoAssignment) {
		t.Errorf("BeginReveal(empty) error = %v, want ErrNoAssignment", err)
	}
	if session.State() != StateSetup {
		t.Errorf("State() = %s after rejected reveals, want setup", session.State())
	}
}

func TestBeginRevealReplacesAssignment(t *testing.T) {
	names := []string{"Ana", "Luka", "Mira"}
	session := NewSession("ABCDE", "tok")

	if err := session.BeginReveal(dealFor(t, names, RoleCounts{RoleMafia: 1})); err != nil {
		t.Fatalf("BeginReveal() error = %v", err)
	}
	if _, err := session.ShowCurrent(); err != nil {
		t.Fatalf("ShowCurrent() error = %v", err)
	}
	if _, err := session.AdvanceReveal(); err != nil {
		t.Fatalf("AdvanceReveal() error = %v", err)
	}

	// A re-deal starts the walk over with face-down cards.
	if err := session.BeginReveal(dealFor(t, names, RoleCounts{RoleMafia: 1})); err != nil {
		t.Fatalf("second BeginReveal() error = %v", err)
	}
	view, err := session.RevealView()
	if err != nil {
		t.Fatalf("RevealView() error = %v", err)
	}
	if view.Index != 0 || view.Shown || view.RevealedCount != 0 {
		t.Errorf("RevealView after re-deal = %+v, want a fresh walk", view)
	}
}

func TestSummaryView(t *testing.T) {
	names := []string{"Ana", "Luka", "Mira"}
	session := NewSession("ABCDE", "tok")

	if _, err := session.SummaryView(); !errors.Is(err, ErrNoAssignment) {
		t.Errorf("SummaryView() without assignment error = %v, want ErrNoAssignment", err)
	}

	assignment := dealFor(t, names, RoleCounts{RoleMafia: 1})
	if err := session.BeginReveal(assignment); err != nil {
		t.Fatalf("BeginReveal() error = %v", err)
	}

	summary, err := session.SummaryView()
	if err != nil {
		t.Fatalf("SummaryView() error = %v", err)
	}
	if summary.Complete {
		t.Error("Complete = true while the walk is still running")
	}
	if summary.AssignmentID != assignment.ID {
		t.Errorf("AssignmentID = %q, want %q", summary.AssignmentID, assignment.ID)
	}
	if summary.TotalPlayers != 3 {
		t.Errorf("TotalPlayers = %d, want 3", summary.TotalPlayers)
	}
	if summary.Stats.RoleDistribution[RoleMafia] != 1 {
		t.Errorf("Stats.RoleDistribution[mafia] = %d, want 1", summary.Stats.RoleDistribution[RoleMafia])
	}
	if summary.Counts[RoleMafia] != 1 {
		t.Errorf("Counts[mafia] = %d, want 1", summary.Counts[RoleMafia])
	}

	for i := 0; i < len(names); i++ {
		if _, err := session.AdvanceReveal(); err != nil {
			t.Fatalf("AdvanceReveal() error = %v", err)
		}
	}
	summary, err = session.SummaryView()
	if err != nil {
		t.Fatalf("SummaryView() after walk error = %v", err)
	}
	if !summary.Complete {
		t.Error("Complete = false after the walk finished")
	}
}

func TestAssignmentInputs(t *testing.T) {
	session := NewSession("ABCDE", "tok")

	if _, _, err := session.AssignmentInputs(); !errors.Is(err, ErrNoAssignment) {
		t.Errorf("AssignmentInputs() without assignment error = %v, want ErrNoAssignment", err)
	}

	names := []string{"Ana", "Luka", "Mira", "Petar"}
	counts := RoleCounts{RoleMafia: 2}
	if err := session.BeginReveal(dealFor(t, names, counts)); err != nil {
		t.Fatalf("BeginReveal() error = %v", err)
	}

	gotNames, gotCounts, err := session.AssignmentInputs()
	if err != nil {
		t.Fatalf("AssignmentInputs() error = %v", err)
	}
	for i, name := range names {
		if gotNames[i] != name {
			t.Errorf("names[%d] = %q, want %q", i, gotNames[i], name)
		}
	}
	if gotCounts[RoleMafia] != 2 {
		t.Errorf("counts[mafia] = %d, want 2", gotCounts[RoleMafia])
	}
}

func TestResetKeepsConfiguration(t *testing.T) {
	names := []string{"Ana", "Luka", "Mira"}
	counts := RoleCounts{RoleMafia: 1}
	session := NewSession("ABCDE", "tok")
	session.SetSetup(names, counts, true)

	if err := session.BeginReveal(dealFor(t, names, counts)); err != nil {
		t.Fatalf("BeginReveal() error = %v", err)
	}

	session.Reset()

	if session.State() != StateSetup {
		t.Errorf("State() = %s after reset, want setup", session.State())
	}
	if _, err := session.SummaryView(); !errors.Is(err, ErrNoAssignment) {
		t.Errorf("SummaryView() after reset error = %v, want ErrNoAssignment", err)
	}

	view := session.SetupView()
	if len(view.Names) != 3 || view.Counts[RoleMafia] != 1 {
		t.Errorf("reset dropped the configuration: %+v", view)
	}
	if view.Acknowledged {
		t.Error("reset kept the warning acknowledgment")
	}
}

func TestTouchUpdatesLastActive(t *testing.T) {
	session := NewSession("ABCDE", "tok")
	before := session.LastActive()

	time.Sleep(5 * time.Millisecond)
	session.Touch()

	if !session.LastActive().After(before) {
		t.Error("Touch() did not move LastActive forward")
	}
}

func TestSessionConcurrentAccess(t *testing.T) {
	session := NewSession("ABCDE", "tok")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			session.SetSetup(testNames(n+1), RoleCounts{RoleMafia: 1}, false)
			_ = session.SetupView()
			session.Touch()
			_ = session.State()
		}(i)
	}
	wg.Wait()

	if got := len(session.SetupView().Names); got < 1 || got > 10 {
		t.Errorf("names length = %d after concurrent writes, want one of the written lengths", got)
	}
}
