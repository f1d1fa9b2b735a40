// Package network 按循环架构组装元件网络。
//
// 挤压式直接给出闭式结果;燃气发生器与膨胀循环给出关于单一未知量的
// 残差网络,由调用方求根。
package network

import (
	"turbocycle/combustion"
	"turbocycle/fluid"
	"turbocycle/types"
)

// Env 单次求解使用的外部物性源
type Env struct {
	Fluids     fluid.Provider
	Combustion combustion.Provider
}

// Evaluator 隐式架构的残差网络,对未知量是纯函数
type Evaluator interface {
	Cycle() types.CycleType
	// Bounds 未知量的物理定义域
	Bounds() (lo, hi float64)
	// Evaluate 在未知量 u 处求解整个网络,Residual 字段为涡轮功率减泵功率
	Evaluate(u float64) (types.Performance, error)
	Residual(u float64) (float64, error)
}

// New 为已填充默认值并校验过的设计点创建残差网络
func New(env Env, def types.Definition) (Evaluator, error) {
	switch def.Cycle {
	case types.CycleGasGenerator:
		g, err := NewGasGenerator(env, def)
		if err != nil {
			return nil, err
		}
		return g, nil
	case types.CycleExpander:
		e, err := NewExpander(env, def)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, types.NewInvalidParameter("network", "cycle", float64(def.Cycle), "不是隐式架构")
}

// residualOf 由 Evaluate 得到残差
func residualOf(e Evaluator, u float64) (float64, error) {
	p, err := e.Evaluate(u)
	if err != nil {
		return 0, err
	}
	return p.Residual, nil
}
