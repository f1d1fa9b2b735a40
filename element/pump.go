package element

import (
	"turbocycle/fluid"
	"turbocycle/types"
)

// PumpResult 泵工作点
type PumpResult struct {
	Outlet       types.FlowState
	Power        float64 // 消耗轴功率 W
	IdealWork    float64 // 等熵比功 J/kg
	ActualWork   float64 // 实际比功 J/kg
	WorkRatio    float64 // 等熵比功/实际比功
	PressureRise float64 // Pa
	Head         float64 // 扬程 m
}

// Pump 将入口状态增压到 pOut。
//
//	w_s = h(pOut, s_in) - h_in, w = w_s/η, 出口由 (pOut, h_in + w) 反算。
func Pump(prov fluid.Provider, in types.FlowState, pOut, eta float64) (PumpResult, error) {
	const name = "pump"
	if err := checkEfficiency(name, "efficiency", eta); err != nil {
		return PumpResult{}, err
	}
	if err := checkFlow(name, in); err != nil {
		return PumpResult{}, err
	}
	if err := checkInlet(name, in); err != nil {
		return PumpResult{}, err
	}
	if !(pOut > in.Pressure) {
		return PumpResult{}, types.NewInvalidParameter(name, "discharge_pressure", pOut, "必须高于入口压力")
	}
	ideal, err := fluid.StateFromPS(prov, in.Fluid, pOut, in.Entropy, in.MassFlow)
	if err != nil {
		return PumpResult{}, err
	}
	ws := ideal.Enthalpy - in.Enthalpy
	w := ws / eta
	out, err := fluid.StateFromPH(prov, in.Fluid, pOut, in.Enthalpy+w, in.MassFlow)
	if err != nil {
		return PumpResult{}, err
	}
	head := 0.0
	if in.Density > 0 {
		head = (pOut - in.Pressure) / (in.Density * types.G0)
	}
	return PumpResult{
		Outlet:       out,
		Power:        in.MassFlow * w,
		IdealWork:    ws,
		ActualWork:   w,
		WorkRatio:    ws / w,
		PressureRise: pOut - in.Pressure,
		Head:         head,
	}, nil
}

// Summary 元件摘要
func (r PumpResult) Summary(name string, in types.FlowState) types.ComponentSummary {
	return types.ComponentSummary{
		Name: name, Kind: types.KindPump, Power: r.Power,
		PressureDrop: -r.PressureRise, Inlet: in, Outlet: r.Outlet,
	}
}
