package game

import (
	"github.com/hexline/server/internal/core/event"
	"github.com/hexline/server/internal/world"
)

// busObserver forwards registry mutations onto the event bus.
type busObserver struct {
	bus *event.Bus
}

func (o busObserver) UnitAdded(u world.Unit) {
	event.Emit(o.bus, event.UnitAdded{Unit: u})
}

func (o busObserver) UnitChanged(u, old world.Unit) {
	event.Emit(o.bus, event.UnitChanged{Unit: u, Old: old})
}

func (o busObserver) UnitRemoved(u world.Unit, why world.Removal) {
	event.Emit(o.bus, event.UnitRemoved{Unit: u, Reason: why})
}

func (o busObserver) UnitsReplaced(units []world.Unit) {
	event.Emit(o.bus, event.UnitsReplaced{Count: len(units)})
}
