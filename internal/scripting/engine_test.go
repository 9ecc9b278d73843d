package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, script string) *Engine {
	t.Helper()
	dir := t.TempDir()
	if script != "" {
		if err := os.WriteFile(filepath.Join(dir, "effects.lua"), []byte(script), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestCalcEffectFallback(t *testing.T) {
	e := newTestEngine(t, "")

	got := e.CalcEffect(EffectContext{Ability: "firebolt", Element: "magic", Base: 100, Resist: 0.75})
	if got.Amount != 25 {
		t.Fatalf("amount = %d, want 25", got.Amount)
	}

	// Full mitigation floors at zero, never negative.
	got = e.CalcEffect(EffectContext{Base: 40, Resist: 1.5})
	if got.Amount != 0 {
		t.Fatalf("over-mitigated amount = %d, want 0", got.Amount)
	}
}

func TestCalcEffectScripted(t *testing.T) {
	e := newTestEngine(t, `
function calc_effect(ctx)
    local amount = math.floor(ctx.base * (1 - ctx.resist))
    if ctx.element == "magic" then
        amount = amount + 5
    end
    return { amount = amount }
end
`)
	got := e.CalcEffect(EffectContext{Ability: "firebolt", Element: "magic", Base: 100, Resist: 0.75})
	if got.Amount != 30 {
		t.Fatalf("scripted amount = %d, want 30", got.Amount)
	}
}

func TestCalcEffectBadScriptFallsBack(t *testing.T) {
	e := newTestEngine(t, `
function calc_effect(ctx)
    error("scripted failure")
end
`)
	got := e.CalcEffect(EffectContext{Base: 100, Resist: 0.75})
	if got.Amount != 25 {
		t.Fatalf("fallback amount = %d, want 25", got.Amount)
	}
}

func TestMissingScriptsDir(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	if err != nil {
		t.Fatalf("missing dir should not fail: %v", err)
	}
	defer e.Close()
	if got := e.CalcEffect(EffectContext{Base: 10}); got.Amount != 10 {
		t.Fatalf("amount = %d, want 10", got.Amount)
	}
}
