package event

import (
	"sync"
	"testing"

	"github.com/hexline/server/internal/phase"
)

func TestEmitIsSynchronous(t *testing.T) {
	b := NewBus()
	var got []PhaseChanged
	Subscribe(b, func(e PhaseChanged) { got = append(got, e) })

	Emit(b, PhaseChanged{Old: phase.Initiative, New: phase.Movement})

	if len(got) != 1 || got[0].New != phase.Movement {
		t.Fatalf("handler saw %v, want one movement change", got)
	}
}

func TestEmitRoutesByType(t *testing.T) {
	b := NewBus()
	phases, turns := 0, 0
	Subscribe(b, func(PhaseChanged) { phases++ })
	Subscribe(b, func(TurnChanged) { turns++ })
	Subscribe(b, func(TurnChanged) { turns++ })

	Emit(b, TurnChanged{OldPlayer: 1, NewPlayer: 2})

	if phases != 0 || turns != 2 {
		t.Errorf("phases=%d turns=%d, want 0 and 2", phases, turns)
	}
}

func TestHandlerMayEmit(t *testing.T) {
	b := NewBus()
	ended := 0
	Subscribe(b, func(e PhaseChanged) {
		if e.New == phase.Victory {
			Emit(b, GameEnded{WinnerPlayer: 1})
		}
	})
	Subscribe(b, func(GameEnded) { ended++ })

	Emit(b, PhaseChanged{Old: phase.End, New: phase.Victory})

	if ended != 1 {
		t.Errorf("nested emit delivered %d times, want 1", ended)
	}
}

func TestShutdownDropsLaterEvents(t *testing.T) {
	b := NewBus()
	calls := 0
	Subscribe(b, func(UnitsReplaced) { calls++ })

	b.Shutdown()
	Emit(b, UnitsReplaced{Count: 3})
	Subscribe(b, func(UnitsReplaced) { calls++ })
	Emit(b, UnitsReplaced{Count: 3})

	if calls != 0 {
		t.Errorf("handlers ran %d times after shutdown", calls)
	}
}

func TestShutdownWaitsForDelivery(t *testing.T) {
	b := NewBus()
	started := make(chan struct{})
	release := make(chan struct{})
	finished := false
	Subscribe(b, func(ReportAdded) {
		close(started)
		<-release
		finished = true
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		Emit(b, ReportAdded{Text: "x"})
	}()
	<-started

	done := make(chan struct{})
	go func() {
		b.Shutdown()
		close(done)
	}()
	close(release)
	<-done
	if !finished {
		t.Error("Shutdown returned before the in-flight handler finished")
	}
	wg.Wait()
}
