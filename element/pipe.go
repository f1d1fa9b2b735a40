package element

import (
	"math"

	"turbocycle/fluid"
	"turbocycle/types"
)

// LaminarReynolds 层流/湍流分界雷诺数
const LaminarReynolds = 2300.0

// PipeResult 管路工作点
type PipeResult struct {
	Outlet         types.FlowState
	PressureDrop   float64 // 总压降 Pa
	FrictionDrop   float64 // 沿程损失 Pa
	MinorDrop      float64 // 局部损失 Pa
	GravityDrop    float64 // 静压头 Pa
	Velocity       float64 // m/s
	Reynolds       float64
	FrictionFactor float64 // Darcy 摩擦系数
}

// FrictionFactor Darcy 摩擦系数: 层流 64/Re,湍流 Swamee-Jain
func FrictionFactor(re, relRoughness float64) float64 {
	if re < LaminarReynolds {
		return 64 / math.Max(re, 1)
	}
	l := math.Log10(relRoughness/3.7 + 5.74/math.Pow(re, 0.9))
	return 0.25 / (l * l)
}

// PipeDrop 按入口状态计算管路压降,不求出口状态。
// 压降可以超过入口压力,供由下游压力反推上游压力时预估损失。
func PipeDrop(prov fluid.Provider, in types.FlowState, line types.Line) (PipeResult, error) {
	const name = "pipe"
	switch {
	case !(line.Diameter > 0):
		return PipeResult{}, types.NewInvalidParameter(name, "diameter", line.Diameter, "必须为正")
	case line.Length < 0:
		return PipeResult{}, types.NewInvalidParameter(name, "length", line.Length, "不能为负")
	case line.Roughness < 0:
		return PipeResult{}, types.NewInvalidParameter(name, "roughness", line.Roughness, "不能为负")
	case line.MinorLoss < 0:
		return PipeResult{}, types.NewInvalidParameter(name, "minor_loss", line.MinorLoss, "不能为负")
	}
	if err := checkInlet(name, in); err != nil {
		return PipeResult{}, err
	}
	if in.MassFlow < 0 {
		return PipeResult{}, types.NewInvalidParameter(name, "mass_flow", in.MassFlow, "不能为负")
	}
	pr, err := prov.Properties(in.Fluid, in.Pressure, in.Temperature)
	if err != nil {
		return PipeResult{}, err
	}
	rho := pr.Density
	if in.TwoPhase() {
		rho = in.Density
	}
	area := math.Pi * line.Diameter * line.Diameter / 4
	v := in.MassFlow / (rho * area)
	re := 0.0
	if pr.Viscosity > 0 {
		re = rho * v * line.Diameter / pr.Viscosity
	}
	f := 0.0
	if v > 0 {
		f = FrictionFactor(re, line.Roughness/line.Diameter)
	}
	q := 0.5 * rho * v * v
	res := PipeResult{
		FrictionDrop:   f * line.Length / line.Diameter * q,
		MinorDrop:      line.MinorLoss * q,
		GravityDrop:    rho * types.G0 * line.HeightChange,
		Velocity:       v,
		Reynolds:       re,
		FrictionFactor: f,
	}
	res.PressureDrop = res.FrictionDrop + res.MinorDrop + res.GravityDrop
	return res, nil
}

// Pipe 绝热管路: 沿程损失 + 局部损失 + 静压头,出口焓不变
func Pipe(prov fluid.Provider, in types.FlowState, line types.Line) (PipeResult, error) {
	const name = "pipe"
	res, err := PipeDrop(prov, in, line)
	if err != nil {
		return PipeResult{}, err
	}
	pOut := in.Pressure - res.PressureDrop
	if err := checkOutletPressure(name, pOut); err != nil {
		return PipeResult{}, err
	}
	res.Outlet = in
	if res.PressureDrop != 0 {
		if res.Outlet, err = fluid.StateFromPH(prov, in.Fluid, pOut, in.Enthalpy, in.MassFlow); err != nil {
			return PipeResult{}, err
		}
	}
	return res, nil
}

// Summary 元件摘要
func (r PipeResult) Summary(name string, in types.FlowState) types.ComponentSummary {
	return types.ComponentSummary{
		Name: name, Kind: types.KindPipe, PressureDrop: r.PressureDrop, Inlet: in, Outlet: r.Outlet,
	}
}
