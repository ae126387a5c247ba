package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/hexline/server/internal/action"
	"github.com/hexline/server/internal/world"
)

// Engine wraps a single gopher-lua VM holding the combat tables. It answers
// attack estimates for the action ledger. Single-goroutine access only (the
// round driver).
type Engine struct {
	vm     *lua.LState
	lookup action.Lookup
	log    *zap.Logger
}

// NewEngine creates a Lua engine and loads the scripts under scriptsDir:
// core/ first, then combat/. Missing directories are skipped.
func NewEngine(scriptsDir string, lookup action.Lookup, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("IMPOSSIBLE", lua.LNumber(action.Impossible))

	e := &Engine{vm: vm, lookup: lookup, log: log}

	for _, sub := range []string{"core", "combat"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// impossible is returned whenever the script cannot answer.
func impossible(side action.Limb) action.Estimate {
	return action.Estimate{Side: side, ToHit: action.Impossible}
}

// Estimate calls the Lua estimate_attack function for one side of a. Any
// script failure yields an impossible attack.
func (e *Engine) Estimate(a *action.Action, side action.Limb) action.Estimate {
	fn := e.vm.GetGlobal("estimate_attack")
	if fn == lua.LNil {
		e.log.Error("lua function estimate_attack not found")
		return impossible(side)
	}

	t := e.vm.NewTable()
	t.RawSetString("kind", lua.LString(a.Kind.String()))
	t.RawSetString("side", lua.LString(side.String()))
	t.RawSetString("weapon", lua.LNumber(a.WeaponID))
	t.RawSetString("attacker", e.unitTable(a.UnitID))
	t.RawSetString("target", e.unitTable(a.TargetID))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua estimate_attack error", zap.Error(err), zap.Stringer("action", a))
		return impossible(side)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua estimate_attack returned non-table", zap.Stringer("action", a))
		return impossible(side)
	}

	return action.Estimate{
		Side:   side,
		ToHit:  int(lua.LVAsNumber(rt.RawGetString("to_hit"))),
		Damage: int(lua.LVAsNumber(rt.RawGetString("damage"))),
	}
}

// unitTable packs the traits the combat scripts read. A unit that is gone
// packs as nil so scripts can treat it as a miss.
func (e *Engine) unitTable(id int) lua.LValue {
	if e.lookup == nil {
		return lua.LNil
	}
	u := e.lookup(id)
	if u == nil {
		return lua.LNil
	}
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(u.ID()))
	t.RawSetString("owner", lua.LNumber(u.OwnerID()))
	t.RawSetString("kind", lua.LString(u.Kind().String()))
	t.RawSetString("prone", lua.LBool(u.Has(world.CapProne)))
	t.RawSetString("airborne", lua.LBool(u.Has(world.CapAirborne)))
	t.RawSetString("immobile", lua.LBool(u.Has(world.CapImmobile)))
	t.RawSetString("active", lua.LBool(u.Active()))
	t.RawSetString("targetable", lua.LBool(u.Targetable()))
	return t
}
