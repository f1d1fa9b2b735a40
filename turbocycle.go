// Package turbocycle 液体火箭发动机循环稳态工作点求解器。
//
// 给定循环架构、推力、燃烧室压力与元件效率,求解自洽的稳态工作点:
// 挤压式为闭式计算,燃气发生器与膨胀循环通过单变量求根闭合涡轮泵功率平衡。
package turbocycle

import (
	"turbocycle/combustion"
	"turbocycle/fluid"
	"turbocycle/types"
)

// Options 求解器数值参数,零值字段取默认值
type Options struct {
	RelTolerance     float64 // 功率容差,相对定义域下界处的泵功率
	AbsTolerance     float64 // 功率容差下限 W
	UnknownTolerance float64 // 未知量容差,相对定义域宽度
	MaxIterations    int
	ScanPoints       int // 括号扫描网格段数
}

// DefaultOptions 默认数值参数
func DefaultOptions() Options {
	return Options{
		RelTolerance:     types.RelPowerTolerance,
		AbsTolerance:     types.AbsPowerTolerance,
		UnknownTolerance: types.UnknownTolerance,
		MaxIterations:    types.MaxIterations,
		ScanPoints:       types.ScanPoints,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RelTolerance <= 0 {
		o.RelTolerance = d.RelTolerance
	}
	if o.AbsTolerance <= 0 {
		o.AbsTolerance = d.AbsTolerance
	}
	if o.UnknownTolerance <= 0 {
		o.UnknownTolerance = d.UnknownTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.ScanPoints <= 0 {
		o.ScanPoints = d.ScanPoints
	}
	return o
}

// Solver 持有物性源与数值参数,构建后只读。
// 未设置调试记录器时可并发使用。
type Solver struct {
	fluids     fluid.Provider
	combustion combustion.Provider
	opts       Options
	trace      types.Debug
}

// Option 求解器配置项
type Option func(*Solver)

// WithFluids 替换流体物性源
func WithFluids(p fluid.Provider) Option { return func(s *Solver) { s.fluids = p } }

// WithCombustion 替换燃烧物性源
func WithCombustion(p combustion.Provider) Option { return func(s *Solver) { s.combustion = p } }

// WithOptions 替换数值参数
func WithOptions(o Options) Option { return func(s *Solver) { s.opts = o.withDefaults() } }

// WithTrace 设置迭代调试记录器
func WithTrace(d types.Debug) Option { return func(s *Solver) { s.trace = d } }

// New 创建求解器,默认使用内置物性表
func New(opts ...Option) *Solver {
	s := &Solver{
		fluids:     fluid.Builtin(),
		combustion: combustion.Builtin(),
		opts:       DefaultOptions(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Options 当前数值参数
func (s *Solver) Options() Options { return s.opts }

var defaultSolver = New()

// Solve 使用内置物性表与默认参数求解设计点
func Solve(def types.Definition) (types.Performance, error) { return defaultSolver.Solve(def) }

// Compare 使用默认求解器对比各架构
func Compare(def types.Definition) []Comparison { return defaultSolver.Compare(def) }
