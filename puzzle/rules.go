package puzzle

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

var ErrScript = errors.New("puzzle: rule script")

// RuleInput is what a rule sees each tick.
type RuleInput struct {
	// Pressed holds the ids of switches held down this tick, sorted.
	Pressed []string
	// Collected counts memories picked up so far.
	Collected int
	// Targets maps each switch id to the barrier it drives, if any.
	Targets map[string]string
}

// Rules decide which barriers are open.
type Rules interface {
	Open(in RuleInput) ([]string, error)
}

// DefaultRules opens a barrier while any switch targeting it is pressed.
type DefaultRules struct{}

func (DefaultRules) Open(in RuleInput) ([]string, error) {
	var open []string
	for _, id := range in.Pressed {
		if target := in.Targets[id]; target != "" && !slices.Contains(open, target) {
			open = append(open, target)
		}
	}
	slices.Sort(open)
	return open, nil
}

// ScriptRules evaluates a tengo script. The script reads `pressed` (array of switch
// ids) and `collected` (int) and assigns `open` (array of barrier ids).
type ScriptRules struct {
	compiled *tengo.Compiled
}

// CompileRules compiles src once. Each Open call reruns it with fresh inputs.
func CompileRules(src string) (*ScriptRules, error) {
	script := tengo.NewScript([]byte(src))
	_ = script.Add("pressed", []interface{}{})
	_ = script.Add("collected", 0)
	_ = script.Add("open", []interface{}{})

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("%w: compile: %w", ErrScript, err)
	}
	return &ScriptRules{compiled: compiled}, nil
}

func (r *ScriptRules) Open(in RuleInput) ([]string, error) {
	pressed := make([]interface{}, len(in.Pressed))
	for i, id := range in.Pressed {
		pressed[i] = id
	}
	if err := r.compiled.Set("pressed", pressed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}
	if err := r.compiled.Set("collected", in.Collected); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}
	if err := r.compiled.Set("open", []interface{}{}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}
	if err := r.compiled.Run(); err != nil {
		return nil, fmt.Errorf("%w: run: %w", ErrScript, err)
	}

	var open []string
	for _, v := range r.compiled.Get("open").Array() {
		id, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: open contains %T, want string", ErrScript, v)
		}
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(open, id) {
			open = append(open, id)
		}
	}
	slices.Sort(open)
	return open, nil
}

// RulesFor returns the script rules of a level, or DefaultRules when it has none.
func RulesFor(script string) (Rules, error) {
	if strings.TrimSpace(script) == "" {
		return DefaultRules{}, nil
	}
	return CompileRules(script)
}
