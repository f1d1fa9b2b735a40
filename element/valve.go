package element

import (
	"turbocycle/fluid"
	"turbocycle/types"
)

// ValveSpec 阀门参数,Cv > 0 时按流量系数计算压降,否则取固定压降 DP
type ValveSpec struct {
	DP float64 // 固定压降 Pa
	Cv float64 // 流量系数 m³/h (1 bar 压降)
}

// ValveResult 阀门工作点
type ValveResult struct {
	Outlet       types.FlowState
	PressureDrop float64 // Pa
}

// PressureDrop 给定入口状态下的阀门压降
//
//	ΔP = (Q/Cv)²·(ρ/1000)·1e5, Q 为体积流量 m³/h
func (v ValveSpec) PressureDrop(in types.FlowState) (float64, error) {
	const name = "valve"
	if v.Cv == 0 {
		if v.DP < 0 || !finite(v.DP) {
			return 0, types.NewInvalidParameter(name, "pressure_drop", v.DP, "不能为负")
		}
		return v.DP, nil
	}
	if !(v.Cv > 0) {
		return 0, types.NewInvalidParameter(name, "cv", v.Cv, "必须为正")
	}
	if !(in.Density > 0) {
		return 0, types.NewInvalidParameter(name, "density", in.Density, "必须为正")
	}
	q := in.MassFlow / in.Density * 3600
	r := q / v.Cv
	return r * r * (in.Density / 1000) * 1e5, nil
}

// Valve 等焓节流: 出口焓等于入口焓
func Valve(prov fluid.Provider, in types.FlowState, spec ValveSpec) (ValveResult, error) {
	const name = "valve"
	if err := checkInlet(name, in); err != nil {
		return ValveResult{}, err
	}
	if in.MassFlow < 0 {
		return ValveResult{}, types.NewInvalidParameter(name, "mass_flow", in.MassFlow, "不能为负")
	}
	dp, err := spec.PressureDrop(in)
	if err != nil {
		return ValveResult{}, err
	}
	pOut := in.Pressure - dp
	if err := checkOutletPressure(name, pOut); err != nil {
		return ValveResult{}, err
	}
	out := in
	if dp > 0 {
		if out, err = fluid.StateFromPH(prov, in.Fluid, pOut, in.Enthalpy, in.MassFlow); err != nil {
			return ValveResult{}, err
		}
	}
	return ValveResult{Outlet: out, PressureDrop: dp}, nil
}

// Summary 元件摘要
func (r ValveResult) Summary(name string, in types.FlowState) types.ComponentSummary {
	return types.ComponentSummary{
		Name: name, Kind: types.KindValve, PressureDrop: r.PressureDrop, Inlet: in, Outlet: r.Outlet,
	}
}
