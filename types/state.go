package types

import "fmt"

// FlowState 网络中某一点的流体状态,值类型,在元件链中线性传递。
type FlowState struct {
	Fluid       string  `json:"fluid"`       // 流体名称
	Pressure    float64 `json:"pressure"`    // 压力 Pa
	Temperature float64 `json:"temperature"` // 温度 K
	MassFlow    float64 `json:"mass_flow"`   // 质量流量 kg/s
	Enthalpy    float64 `json:"enthalpy"`    // 比焓 J/kg
	Entropy     float64 `json:"entropy"`     // 比熵 J/(kg·K)
	Density     float64 `json:"density"`     // 密度 kg/m³
	Quality     float64 `json:"quality"`     // 干度,单相为 -1
}

// TwoPhase 是否处于两相区
func (s FlowState) TwoPhase() bool { return s.Quality >= 0 && s.Quality <= 1 }

// WithMassFlow 返回流量替换后的状态
func (s FlowState) WithMassFlow(mdot float64) FlowState {
	s.MassFlow = mdot
	return s
}

func (s FlowState) String() string {
	return fmt.Sprintf("%s(%.4g Pa, %.4g K, %.4g kg/s)", s.Fluid, s.Pressure, s.Temperature, s.MassFlow)
}
