package fluid

import (
	"math"

	"turbocycle/types"
)

// IdealGas 定比热理想气体,焓以 298.15 K 为零点,熵以 (298.15 K, 1 atm) 为零点。
// 用于燃烧产物(燃气发生器燃气、燃烧室燃气)。
type IdealGas struct {
	Gamma     float64 // 比热比
	MolarMass float64 // kg/mol
	Viscosity float64 // Pa·s,0 时取 4e-5
}

// NewIdealGas 创建理想气体模型并检查参数
func NewIdealGas(gamma, molarMass float64) (IdealGas, error) {
	if !(gamma > 1) {
		return IdealGas{}, types.NewInvalidParameter("ideal_gas", "gamma", gamma, "必须大于 1")
	}
	if !(molarMass > 0) {
		return IdealGas{}, types.NewInvalidParameter("ideal_gas", "molar_mass", molarMass, "必须为正")
	}
	return IdealGas{Gamma: gamma, MolarMass: molarMass}, nil
}

// R 气体常数 J/(kg·K)
func (g IdealGas) R() float64 { return types.RUniversal / g.MolarMass }

// Cp 定压比热 J/(kg·K)
func (g IdealGas) Cp() float64 { return g.Gamma * g.R() / (g.Gamma - 1) }

// Properties 实现 Model
func (g IdealGas) Properties(p, t float64) (Properties, error) {
	r, cp := g.R(), g.Cp()
	mu := g.Viscosity
	if mu == 0 {
		mu = 4e-5
	}
	return Properties{
		Density:   p / (r * t),
		Enthalpy:  cp * (t - types.RefTemperature),
		Entropy:   cp*math.Log(t/types.RefTemperature) - r*math.Log(p/types.AtmPressure),
		Cp:        cp,
		Viscosity: mu,
		Quality:   -1,
	}, nil
}
