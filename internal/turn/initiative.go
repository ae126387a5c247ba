package turn

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Initiative holds an orderable's rolls for the current round plus the
// bonuses added to each roll. Rolls compare lexicographically: the first roll
// decides, later rolls only break ties.
type Initiative struct {
	Rolls []int
	// Bonus is a fixed modifier, e.g. from a commander.
	Bonus int
	// CompBonus is the streak compensation bonus earned by losing repeatedly.
	CompBonus int
	losses    int
}

func (in *Initiative) total(useComp bool) int {
	if useComp {
		return in.Bonus + in.CompBonus
	}
	return in.Bonus
}

func (in *Initiative) add(roll int) {
	in.Rolls = append(in.Rolls, roll)
}

// replace swaps the most recent roll for a fresh one.
func (in *Initiative) replace(roll int) {
	if len(in.Rolls) == 0 {
		in.add(roll)
		return
	}
	in.Rolls[len(in.Rolls)-1] = roll
}

// Compare returns >0 when in beats other, <0 when it loses, 0 on a tie.
func (in *Initiative) Compare(other *Initiative) int {
	n := max(len(in.Rolls), len(other.Rolls))
	for i := 0; i < n; i++ {
		a, b := at(in.Rolls, i), at(other.Rolls, i)
		if a != b {
			return a - b
		}
	}
	return 0
}

func at(rolls []int, i int) int {
	if i < len(rolls) {
		return rolls[i]
	}
	return 0
}

func (in *Initiative) String() string {
	parts := make([]string, len(in.Rolls))
	for i, r := range in.Rolls {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, " / ")
}

// Losses returns the current losing streak.
func (in *Initiative) Losses() int { return in.losses }

// Orderable is anything that rolls initiative: a team, or a single unit in
// individual initiative mode.
type Orderable interface {
	OrderID() int
	Init() *Initiative
	// Players lists the players whose turns this orderable hands out.
	Players() []int
}

// RollInitiative rolls for items and returns them winner first.
//
// With rerolls nil every item's rolls are cleared and rolled afresh. With
// rerolls set, only the listed OrderIDs replace their latest roll and every
// other item keeps its rolls untouched. Either way, items left tied then roll
// again, appending a tie-breaker, until no two items tie.
func (s *Scheduler) RollInitiative(items []Orderable, rerolls []int, useComp bool) []Orderable {
	for _, it := range items {
		in := it.Init()
		switch {
		case rerolls == nil:
			in.Rolls = in.Rolls[:0]
			in.add(s.Roll2d6() + in.total(useComp))
		case slices.Contains(rerolls, it.OrderID()):
			in.replace(s.Roll2d6() + in.total(useComp))
		}
	}
	s.resolveTies(items, useComp, 0)

	order := slices.Clone(items)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Init().Compare(order[j].Init()) > 0
	})
	return order
}

// maxTieDepth bounds tie-break recursion; with fair dice it is never reached.
const maxTieDepth = 32

func (s *Scheduler) resolveTies(items []Orderable, useComp bool, depth int) {
	if depth >= maxTieDepth {
		return
	}
	for _, it := range items {
		tied := []Orderable{it}
		for _, other := range items {
			if other != it && it.Init().Compare(other.Init()) == 0 {
				tied = append(tied, other)
			}
		}
		if len(tied) < 2 {
			continue
		}
		for _, t := range tied {
			t.Init().add(s.Roll2d6() + t.Init().total(useComp))
		}
		s.resolveTies(tied, useComp, depth+1)
	}
}

// ApplyCompensation updates the streak bonus after the round's final order
// is known: the winner's streak and bonus reset, every other orderable extends
// its losing streak and earns +1 for each consecutive loss after the first.
func ApplyCompensation(order []Orderable) {
	for i, it := range order {
		in := it.Init()
		if i == 0 {
			in.losses = 0
			in.CompBonus = 0
			continue
		}
		in.losses++
		in.CompBonus = max(0, in.losses-1)
	}
}
