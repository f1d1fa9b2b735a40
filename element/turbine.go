package element

import (
	"turbocycle/fluid"
	"turbocycle/types"
)

// TurbineResult 涡轮工作点
type TurbineResult struct {
	Outlet        types.FlowState
	Power         float64 // 输出轴功率 W
	IdealWork     float64 // 等熵比功 J/kg
	ActualWork    float64 // 实际比功 J/kg
	WorkRatio     float64 // 实际比功/等熵比功
	PressureRatio float64 // 入口压力/出口压力
}

// Turbine 将入口状态膨胀到 pOut,w = η·(h_in - h(pOut, s_in))
func Turbine(prov fluid.Provider, in types.FlowState, pOut, eta float64) (TurbineResult, error) {
	const name = "turbine"
	if err := checkEfficiency(name, "efficiency", eta); err != nil {
		return TurbineResult{}, err
	}
	if err := checkFlow(name, in); err != nil {
		return TurbineResult{}, err
	}
	if err := checkInlet(name, in); err != nil {
		return TurbineResult{}, err
	}
	if !(pOut > 0) {
		return TurbineResult{}, types.NewInvalidParameter(name, "outlet_pressure", pOut, "必须为正")
	}
	if pOut >= in.Pressure {
		return TurbineResult{}, types.NewInvalidParameter(name, "outlet_pressure", pOut, "必须低于入口压力")
	}
	ideal, err := fluid.StateFromPS(prov, in.Fluid, pOut, in.Entropy, in.MassFlow)
	if err != nil {
		return TurbineResult{}, err
	}
	ws := in.Enthalpy - ideal.Enthalpy
	w := eta * ws
	out, err := fluid.StateFromPH(prov, in.Fluid, pOut, in.Enthalpy-w, in.MassFlow)
	if err != nil {
		return TurbineResult{}, err
	}
	return TurbineResult{
		Outlet:        out,
		Power:         in.MassFlow * w,
		IdealWork:     ws,
		ActualWork:    w,
		WorkRatio:     eta,
		PressureRatio: in.Pressure / pOut,
	}, nil
}

// Summary 元件摘要
func (r TurbineResult) Summary(name string, in types.FlowState) types.ComponentSummary {
	return types.ComponentSummary{
		Name: name, Kind: types.KindTurbine, Power: r.Power,
		PressureDrop: in.Pressure - r.Outlet.Pressure, Inlet: in, Outlet: r.Outlet,
	}
}
