package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for effect formula evaluation.
// Single-goroutine access only: exactly one pipeline system owns it.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. A missing directory is fine; formulas then use the built-in
// fallbacks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
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

// EffectContext holds pre-packed data for an actualized-effect calculation.
type EffectContext struct {
	Ability string
	Element string
	Base    int     // declared ability power
	Resist  float64 // target mitigation for the element, 0..1
}

// EffectResult is the actualized outcome of a game action.
type EffectResult struct {
	Amount int
}

// CalcEffect calls the Lua calc_effect function. When the function is absent
// or misbehaves, the built-in residual formula applies instead so a missing
// script never stalls the simulation.
func (e *Engine) CalcEffect(ctx EffectContext) EffectResult {
	fn := e.vm.GetGlobal("calc_effect")
	if fn == lua.LNil {
		return fallbackEffect(ctx)
	}

	t := e.vm.NewTable()
	t.RawSetString("ability", lua.LString(ctx.Ability))
	t.RawSetString("element", lua.LString(ctx.Element))
	t.RawSetString("base", lua.LNumber(ctx.Base))
	t.RawSetString("resist", lua.LNumber(ctx.Resist))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_effect error", zap.Error(err))
		return fallbackEffect(ctx)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua calc_effect returned non-table")
		return fallbackEffect(ctx)
	}
	return EffectResult{
		Amount: int(lua.LVAsNumber(rt.RawGetString("amount"))),
	}
}

// fallbackEffect applies the residual formula: base power scaled by what the
// target's mitigation lets through, floored.
func fallbackEffect(ctx EffectContext) EffectResult {
	residual := 1 - ctx.Resist
	if residual < 0 {
		residual = 0
	}
	return EffectResult{
		Amount: int(math.Floor(float64(ctx.Base) * residual)),
	}
}
