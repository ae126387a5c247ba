package phase

import "testing"

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected string
	}{
		{Lounge, "lounge"},
		{Movement, "movement"},
		{PhysicalReport, "physical_report"},
		{Phase(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.expected {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := PhysicalReport.DisplayName(); got != "Physical Report" {
		t.Errorf("DisplayName() = %q, want %q", got, "Physical Report")
	}
	if got := Firing.DisplayName(); got != "Firing" {
		t.Errorf("DisplayName() = %q, want %q", got, "Firing")
	}
}

func TestParse(t *testing.T) {
	p, ok := Parse("offboard_report")
	if !ok || p != OffboardReport {
		t.Errorf("Parse(offboard_report) = %v, %v", p, ok)
	}
	if _, ok := Parse("nope"); ok {
		t.Error("Parse(nope) should fail")
	}
}

func TestNextWrapsRound(t *testing.T) {
	seen := map[Phase]bool{}
	p := Initiative
	for i := 0; i < 20; i++ {
		seen[p] = true
		p = p.Next()
		if p == Initiative {
			break
		}
	}
	if p != Initiative {
		t.Fatalf("round did not wrap back to initiative, stopped at %v", p)
	}
	for _, want := range []Phase{Movement, Firing, Physical, End, EndReport} {
		if !seen[want] {
			t.Errorf("round skipped %v", want)
		}
	}
	if seen[Lounge] || seen[Victory] {
		t.Error("round should not pass through lounge or victory")
	}
}

func TestPreGameLeadsToInitiative(t *testing.T) {
	p := Lounge
	for i := 0; i < 5 && p != Initiative; i++ {
		p = p.Next()
	}
	if p != Initiative {
		t.Errorf("pre-game ended at %v, want initiative", p)
	}
	if Victory.Next() != Lounge {
		t.Errorf("Victory.Next() = %v, want lounge", Victory.Next())
	}
}

func TestEntryEffects(t *testing.T) {
	for _, p := range []Phase{Movement, Firing, Physical, Targeting, Deployment, Initiative} {
		if !p.ClearsActions() {
			t.Errorf("%v should clear actions", p)
		}
	}
	if Movement.ClearsCharges() {
		t.Error("movement must leave pending charges alone")
	}
	for _, p := range []Phase{Initiative, PhysicalReport, End} {
		if !p.ClearsCharges() {
			t.Errorf("%v should clear charges", p)
		}
	}
	if !MovementReport.IsReport() || Movement.IsReport() {
		t.Error("IsReport mismatch")
	}
	if Initiative.HasTurns() || End.HasTurns() || !Movement.HasTurns() {
		t.Error("HasTurns mismatch")
	}
}
