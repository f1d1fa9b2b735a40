package fluid

import (
	"errors"
	"fmt"
	"math"

	"turbocycle/maths"
	"turbocycle/types"
)

// 状态反算的温度范围与精度
const (
	TMin        = 1.0    // K
	TMax        = 6000.0 // K
	tempTol     = 1e-9   // 温度收敛容差 K
	jumpProbe   = 1e-6   // 相变间断两侧探测步长 K
	propertyTol = 1e-6   // 物性残差相对容差
)

// State 由 (P, T) 构造流动状态
func State(prov Provider, name string, p, t, mdot float64) (types.FlowState, error) {
	pr, err := prov.Properties(name, p, t)
	if err != nil {
		return types.FlowState{}, err
	}
	return flowState(name, p, t, mdot, pr), nil
}

func flowState(name string, p, t, mdot float64, pr Properties) types.FlowState {
	return types.FlowState{
		Fluid:       name,
		Pressure:    p,
		Temperature: t,
		MassFlow:    mdot,
		Enthalpy:    pr.Enthalpy,
		Entropy:     pr.Entropy,
		Density:     pr.Density,
		Quality:     pr.Quality,
	}
}

// StateFromPS 由 (P, s) 反算状态,落入相变间断时按干度混合
func StateFromPS(prov Provider, name string, p, s, mdot float64) (types.FlowState, error) {
	return invert(prov, name, p, s, mdot, "entropy", func(pr Properties) float64 { return pr.Entropy })
}

// StateFromPH 由 (P, h) 反算状态,落入相变间断时按干度混合
func StateFromPH(prov Provider, name string, p, h, mdot float64) (types.FlowState, error) {
	return invert(prov, name, p, h, mdot, "enthalpy", func(pr Properties) float64 { return pr.Enthalpy })
}

// invert 在 [TMin, TMax] 上以 Brent 方法求 pick(P, T) = target。
// 物性关于 T 单调不减,间断处 Brent 收敛到跳变位置,此时以两侧物性线性混合。
func invert(prov Provider, name string, p, target, mdot float64, what string, pick func(Properties) float64) (types.FlowState, error) {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return types.FlowState{}, types.NewInvalidParameter(name, what, target, "不是有限数值")
	}
	g := func(t float64) (float64, error) {
		pr, err := prov.Properties(name, p, t)
		if err != nil {
			return 0, err
		}
		return pick(pr) - target, nil
	}
	res, err := maths.Brent(g, TMin, TMax, maths.Options{XTol: tempTol, MaxIter: 200})
	if err != nil {
		if errors.Is(err, maths.ErrNotBracketed) {
			return types.FlowState{}, types.NewInvalidParameter(name, what, target,
				fmt.Sprintf("在 %g Pa 下超出物性范围 [%g K, %g K]", p, TMin, TMax))
		}
		return types.FlowState{}, fmt.Errorf("%s 状态反算失败: %w", name, err)
	}
	t := res.Root
	pr, err := prov.Properties(name, p, t)
	if err != nil {
		return types.FlowState{}, err
	}
	if math.Abs(pick(pr)-target) <= propertyTol*math.Max(math.Abs(target), 1e3) {
		return flowState(name, p, t, mdot, pr), nil
	}

	// 相变间断
	liq, err := prov.Properties(name, p, math.Max(t-jumpProbe, TMin))
	if err != nil {
		return types.FlowState{}, err
	}
	vap, err := prov.Properties(name, p, t+jumpProbe)
	if err != nil {
		return types.FlowState{}, err
	}
	a, b := pick(liq), pick(vap)
	if b <= a {
		return flowState(name, p, t, mdot, pr), nil
	}
	q := math.Min(math.Max((target-a)/(b-a), 0), 1)
	mix := Properties{
		Density:   1 / ((1-q)/liq.Density + q/vap.Density),
		Enthalpy:  liq.Enthalpy + q*(vap.Enthalpy-liq.Enthalpy),
		Entropy:   liq.Entropy + q*(vap.Entropy-liq.Entropy),
		Cp:        liq.Cp + q*(vap.Cp-liq.Cp),
		Viscosity: liq.Viscosity + q*(vap.Viscosity-liq.Viscosity),
		Quality:   q,
	}
	return flowState(name, p, t, mdot, mix), nil
}
