package element

import (
	"math"

	"turbocycle/fluid"
	"turbocycle/types"
)

// HXSpec 换热器参数
type HXSpec struct {
	Effectiveness float64 // 效能 ε
	DPHot         float64 // 热侧压降 Pa
	DPCold        float64 // 冷侧压降 Pa
}

// HXResult 换热器工作点
type HXResult struct {
	HotOutlet  types.FlowState
	ColdOutlet types.FlowState
	HeatDuty   float64 // 换热量 W
	MaxDuty    float64 // 理论最大换热量 W
}

// HeatExchanger 效能法换热器,以焓差计算最大换热量:
//
//	Q_max = min(ṁ_h·(h_h(T_h,in) - h_h(T_c,in)), ṁ_c·(h_c(T_h,in) - h_c(T_c,in)))
//	Q = ε·Q_max,热侧入口不高于冷侧时 Q = 0
func HeatExchanger(prov fluid.Provider, hot, cold types.FlowState, spec HXSpec) (HXResult, error) {
	const name = "heat_exchanger"
	if err := checkEfficiency(name, "effectiveness", spec.Effectiveness); err != nil {
		return HXResult{}, err
	}
	if spec.DPHot < 0 || !finite(spec.DPHot) {
		return HXResult{}, types.NewInvalidParameter(name, "dp_hot", spec.DPHot, "不能为负")
	}
	if spec.DPCold < 0 || !finite(spec.DPCold) {
		return HXResult{}, types.NewInvalidParameter(name, "dp_cold", spec.DPCold, "不能为负")
	}
	for _, s := range []types.FlowState{hot, cold} {
		if err := checkFlow(name, s); err != nil {
			return HXResult{}, err
		}
		if err := checkInlet(name, s); err != nil {
			return HXResult{}, err
		}
	}
	pHot, pCold := hot.Pressure-spec.DPHot, cold.Pressure-spec.DPCold
	if err := checkOutletPressure(name, pHot); err != nil {
		return HXResult{}, err
	}
	if err := checkOutletPressure(name, pCold); err != nil {
		return HXResult{}, err
	}

	var qMax float64
	if hot.Temperature > cold.Temperature {
		hh, err := prov.Properties(hot.Fluid, hot.Pressure, cold.Temperature)
		if err != nil {
			return HXResult{}, err
		}
		hc, err := prov.Properties(cold.Fluid, cold.Pressure, hot.Temperature)
		if err != nil {
			return HXResult{}, err
		}
		qMax = math.Min(hot.MassFlow*(hot.Enthalpy-hh.Enthalpy), cold.MassFlow*(hc.Enthalpy-cold.Enthalpy))
		qMax = math.Max(qMax, 0)
	}
	q := spec.Effectiveness * qMax

	hotOut, err := fluid.StateFromPH(prov, hot.Fluid, pHot, hot.Enthalpy-q/hot.MassFlow, hot.MassFlow)
	if err != nil {
		return HXResult{}, err
	}
	coldOut, err := fluid.StateFromPH(prov, cold.Fluid, pCold, cold.Enthalpy+q/cold.MassFlow, cold.MassFlow)
	if err != nil {
		return HXResult{}, err
	}
	return HXResult{HotOutlet: hotOut, ColdOutlet: coldOut, HeatDuty: q, MaxDuty: qMax}, nil
}

// Summary 冷侧元件摘要
func (r HXResult) Summary(name string, cold types.FlowState) types.ComponentSummary {
	return types.ComponentSummary{
		Name: name, Kind: types.KindHeatExchanger, HeatDuty: r.HeatDuty,
		PressureDrop: cold.Pressure - r.ColdOutlet.Pressure, Inlet: cold, Outlet: r.ColdOutlet,
	}
}
