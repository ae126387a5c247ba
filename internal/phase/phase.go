package phase

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Phase is one stage of a round. Values are ordered: within a round the
// engine only ever moves forward, wrapping from EndReport back to Initiative.
type Phase int

const (
	Unknown Phase = iota
	Lounge
	Exchange
	SetArtilleryAutohit
	DeployMinefields
	Initiative
	InitiativeReport
	Deployment
	Targeting
	TargetingReport
	Movement
	MovementReport
	Offboard
	OffboardReport
	Firing
	FiringReport
	Physical
	PhysicalReport
	End
	EndReport
	Victory
)

var names = map[Phase]string{
	Unknown:             "unknown",
	Lounge:              "lounge",
	Exchange:            "exchange",
	SetArtilleryAutohit: "set_artillery_autohit",
	DeployMinefields:    "deploy_minefields",
	Initiative:          "initiative",
	InitiativeReport:    "initiative_report",
	Deployment:          "deployment",
	Targeting:           "targeting",
	TargetingReport:     "targeting_report",
	Movement:            "movement",
	MovementReport:      "movement_report",
	Offboard:            "offboard",
	OffboardReport:      "offboard_report",
	Firing:              "firing",
	FiringReport:        "firing_report",
	Physical:            "physical",
	PhysicalReport:      "physical_report",
	End:                 "end",
	EndReport:           "end_report",
	Victory:             "victory",
}

func (p Phase) String() string {
	if s, ok := names[p]; ok {
		return s
	}
	return "unknown"
}

// DisplayName renders the phase for reports, e.g. "Physical Report".
func (p Phase) DisplayName() string {
	// A Caser keeps state between calls, so build one per use.
	return cases.Title(language.English).String(strings.ReplaceAll(p.String(), "_", " "))
}

// Parse maps a phase name back to its value.
func Parse(s string) (Phase, bool) {
	for p, n := range names {
		if n == s {
			return p, true
		}
	}
	return Unknown, false
}

// Next returns the phase that follows p.
func (p Phase) Next() Phase {
	switch p {
	case EndReport:
		return Initiative
	case Victory, Unknown:
		return Lounge
	default:
		return p + 1
	}
}

// IsReport is true for the phases that only display results.
func (p Phase) IsReport() bool {
	switch p {
	case InitiativeReport, TargetingReport, MovementReport, OffboardReport,
		FiringReport, PhysicalReport, EndReport:
		return true
	}
	return false
}

// HasTurns is true for the phases that hand out turns to units.
func (p Phase) HasTurns() bool {
	switch p {
	case SetArtilleryAutohit, DeployMinefields, Deployment, Targeting,
		Movement, Offboard, Firing, Physical:
		return true
	}
	return false
}

// ClearsActions lists the phases whose entry empties the action ledger.
func (p Phase) ClearsActions() bool {
	switch p {
	case Deployment, Initiative, Targeting, Movement, Firing, Physical:
		return true
	}
	return false
}

// ClearsCharges lists the phases whose entry empties the charge and ram queues.
// PhysicalReport and End both clear; the second pass catches anything queued late.
func (p Phase) ClearsCharges() bool {
	switch p {
	case Initiative, PhysicalReport, End:
		return true
	}
	return false
}
