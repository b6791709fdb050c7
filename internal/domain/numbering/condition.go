package numbering

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// Scheme conditions are CEL expressions evaluated against the partner
// the document belongs to, e.g. `groupCode == "WHOLESALE"` or
// `partnerCode.startsWith("EX-")`.

var (
	celEnvOnce sync.Once
	celEnv     *cel.Env
	celEnvErr  error

	programCache sync.Map // map[string]cel.Program
)

func conditionEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("partnerCode", cel.StringType),
			cel.Variable("groupCode", cel.StringType),
		)
	})
	return celEnv, celEnvErr
}

func compileCondition(expr string) (cel.Program, error) {
	if cached, ok := programCache.Load(expr); ok {
		return cached.(cel.Program), nil
	}

	env, err := conditionEnv()
	if err != nil {
		return nil, fmt.Errorf("condition env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile condition: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("condition must evaluate to bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build condition program: %w", err)
	}

	programCache.Store(expr, prg)
	return prg, nil
}

// evalCondition reports whether the scheme condition matches the
// partner attributes. An empty expression always matches.
func evalCondition(expr, partnerCode, groupCode string) (bool, error) {
	if expr == "" {
		return true, nil
	}

	prg, err := compileCondition(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]any{
		"partnerCode": partnerCode,
		"groupCode":   groupCode,
	})
	if err != nil {
		return false, fmt.Errorf("eval condition: %w", err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("condition returned %T, want bool", out.Value())
	}
	return matched, nil
}
