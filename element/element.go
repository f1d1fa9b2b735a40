// Package element 循环网络元件模型。
//
// 每个模型都是纯函数: 入口状态加参数得到出口状态与功率或压降,
// 物性全部经 fluid.Provider 获取,不持有任何状态。
package element

import (
	"math"

	"turbocycle/types"
)

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// checkEfficiency 效率必须位于 (0, 1]
func checkEfficiency(component, parameter string, eta float64) error {
	if !(eta > 0 && eta <= 1) {
		return types.NewInvalidParameter(component, parameter, eta, "必须位于 (0, 1]")
	}
	return nil
}

// checkFlow 入口流量必须为正
func checkFlow(component string, in types.FlowState) error {
	if !(in.MassFlow > 0) || !finite(in.MassFlow) {
		return types.NewInvalidParameter(component, "mass_flow", in.MassFlow, "必须为正")
	}
	return nil
}

// checkInlet 入口压力温度必须为正
func checkInlet(component string, in types.FlowState) error {
	if !(in.Pressure > 0) || !finite(in.Pressure) {
		return types.NewInvalidParameter(component, "inlet_pressure", in.Pressure, "必须为正")
	}
	if !(in.Temperature > 0) || !finite(in.Temperature) {
		return types.NewInvalidParameter(component, "inlet_temperature", in.Temperature, "必须为正")
	}
	return nil
}

// checkOutletPressure 出口压力必须为正
func checkOutletPressure(component string, p float64) error {
	if !(p > 0) {
		return types.NewInvalidParameter(component, "outlet_pressure", p, "压降超过入口压力")
	}
	return nil
}
