package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for enemy decision scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. Missing directories are skipped, so an engine with no scripts is
// valid and every call falls back to the built-in Go decision.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "ai"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

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

// HasFunc reports whether a global Lua function is defined.
func (e *Engine) HasFunc(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// --- Enemy AI Bridge ---

// AIContext holds pre-packed data for one enemy decision. Target detection is
// done in Go; the script only picks what to do about it.
type AIContext struct {
	EnemyID    uint64
	Template   string
	X, Y, Z    int
	HP, MaxHP  int
	AggroRange int

	// Target (0 = no target)
	TargetID     uint64
	TargetDist   int // Manhattan distance
	TargetDistSq int // squared Euclidean distance

	CanAttack bool // cooldown ready, not already attacking
	CanMove   bool // move timer fired this tick
}

// Command types returned by enemy_ai.
const (
	CmdIdle      = "idle"
	CmdMove      = "move"
	CmdAttack    = "attack"
	CmdLoseAggro = "lose_aggro"
)

// AICommand is a single action returned by Lua AI.
type AICommand struct {
	Type string
}

// RunEnemyAI calls Lua enemy_ai(ctx) and returns a list of commands. ok is
// false when no script defines enemy_ai or the call failed; the caller then
// uses DecideEnemy.
func (e *Engine) RunEnemyAI(ctx AIContext) (cmds []AICommand, ok bool) {
	fn := e.vm.GetGlobal("enemy_ai")
	if fn == lua.LNil {
		return nil, false
	}

	t := e.vm.NewTable()
	t.RawSetString("enemy_id", lua.LNumber(ctx.EnemyID))
	t.RawSetString("template", lua.LString(ctx.Template))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("z", lua.LNumber(ctx.Z))
	t.RawSetString("hp", lua.LNumber(ctx.HP))
	t.RawSetString("max_hp", lua.LNumber(ctx.MaxHP))
	t.RawSetString("aggro_range", lua.LNumber(ctx.AggroRange))
	t.RawSetString("target_id", lua.LNumber(ctx.TargetID))
	t.RawSetString("target_dist", lua.LNumber(ctx.TargetDist))
	t.RawSetString("target_dist_sq", lua.LNumber(ctx.TargetDistSq))
	t.RawSetString("can_attack", lua.LBool(ctx.CanAttack))
	t.RawSetString("can_move", lua.LBool(ctx.CanMove))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua enemy_ai error", zap.Error(err), zap.Uint64("enemy", ctx.EnemyID))
		return nil, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, isTable := result.(*lua.LTable)
	if !isTable {
		return nil, true
	}
	rt.ForEach(func(_, v lua.LValue) {
		if row, isRow := v.(*lua.LTable); isRow {
			cmds = append(cmds, AICommand{Type: lStr(row, "type")})
		}
	})
	return cmds, true
}

// DecideEnemy is the built-in decision, used when no script is loaded:
// leash at twice the aggro range, strike when adjacent, otherwise chase.
func DecideEnemy(ctx AIContext) []AICommand {
	if ctx.TargetID == 0 {
		return []AICommand{{Type: CmdIdle}}
	}
	leash := 2 * ctx.AggroRange
	if ctx.TargetDistSq > leash*leash {
		return []AICommand{{Type: CmdLoseAggro}}
	}
	if ctx.TargetDist == 1 {
		if ctx.CanAttack {
			return []AICommand{{Type: CmdAttack}}
		}
		return []AICommand{{Type: CmdIdle}}
	}
	if ctx.CanMove {
		return []AICommand{{Type: CmdMove}}
	}
	return []AICommand{{Type: CmdIdle}}
}

// --- Lua helpers ---

func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
