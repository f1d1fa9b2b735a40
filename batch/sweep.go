package batch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gonum.org/v1/gonum/floats"

	"turbocycle/types"
)

// Sweep 单参数均匀扫描。
//
// Derived 为派生字段表达式,以扫描后的设计点字段为变量,x 为当前扫描值,例如
//
//	derived:
//	  ox_tank_pressure: "chamber_pressure * 0.1"
//	  fuel_feed.diameter: "ox_feed.diameter * 1.2"
type Sweep struct {
	Parameter string            `json:"parameter" yaml:"parameter"`
	From      float64           `json:"from" yaml:"from"`
	To        float64           `json:"to" yaml:"to"`
	Points    int               `json:"points" yaml:"points"`
	Derived   map[string]string `json:"derived,omitempty" yaml:"derived,omitempty"`
}

// Values 扫描取值
func (s Sweep) Values() []float64 {
	if s.Points <= 1 {
		return []float64{s.From}
	}
	return floats.Span(make([]float64, s.Points), s.From, s.To)
}

type derived struct {
	field   string
	program *vm.Program
}

// Definitions 将扫描展开为设计点列表
func (s Sweep) Definitions(base types.Definition) ([]types.Definition, error) {
	if _, ok := base.Get(s.Parameter); !ok {
		return nil, fmt.Errorf("未知扫描参数: %q", s.Parameter)
	}
	if s.Points < 1 {
		return nil, fmt.Errorf("扫描点数必须为正: %d", s.Points)
	}
	fields := make([]string, 0, len(s.Derived))
	for f := range s.Derived {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	progs := make([]derived, 0, len(fields))
	env := exprEnv(base, s.From)
	for _, f := range fields {
		if _, ok := base.Get(f); !ok {
			return nil, fmt.Errorf("未知派生参数: %q", f)
		}
		p, err := expr.Compile(s.Derived[f], expr.Env(env), expr.AsFloat64())
		if err != nil {
			return nil, fmt.Errorf("派生参数 %s 表达式错误: %w", f, err)
		}
		progs = append(progs, derived{field: f, program: p})
	}

	values := s.Values()
	defs := make([]types.Definition, 0, len(values))
	for _, x := range values {
		def, err := base.With(s.Parameter, x)
		if err != nil {
			return nil, err
		}
		env := exprEnv(def, x)
		for _, d := range progs {
			out, err := expr.Run(d.program, env)
			if err != nil {
				return nil, fmt.Errorf("派生参数 %s 求值失败 (x=%g): %w", d.field, x, err)
			}
			v, ok := out.(float64)
			if !ok {
				return nil, fmt.Errorf("派生参数 %s 结果类型 %T", d.field, out)
			}
			if def, err = def.With(d.field, v); err != nil {
				return nil, err
			}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// exprEnv 表达式变量: 设计点数值字段,带点的名称展开为嵌套映射
func exprEnv(def types.Definition, x float64) map[string]any {
	env := map[string]any{"x": x}
	for _, name := range types.ParameterNames() {
		v, _ := def.Get(name)
		head, tail, ok := strings.Cut(name, ".")
		if !ok {
			env[name] = v
			continue
		}
		m, _ := env[head].(map[string]any)
		if m == nil {
			m = map[string]any{}
			env[head] = m
		}
		m[tail] = v
	}
	return env
}

// Sweep 展开并并发求解参数扫描
func (r *Runner) Sweep(ctx context.Context, base types.Definition, s Sweep) (Result, error) {
	defs, err := s.Definitions(base)
	if err != nil {
		return Result{}, err
	}
	return r.Run(ctx, defs)
}
