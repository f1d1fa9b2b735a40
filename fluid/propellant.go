package fluid

import (
	"math"

	"turbocycle/types"
)

// Propellant 压缩液体/理想气体两段模型。
//
//	饱和温度由 Clausius-Clapeyron 关系给出并截断于临界温度:
//	  1/Tv = 1/Tnb - R·ln(P/Pnb)/L
//	液相 (T < Tv): h = cp_l(T-Tnb) + (P-Pnb)/ρ, s = cp_l·ln(T/Tnb)
//	气相 (T ≥ Tv): h = L + cp_g(T-Tnb), s = L/Tnb + cp_g·ln(T/Tnb) - R·ln(P/Pnb)
//	焓与熵在 Tv 处向上跳变,跳变量即汽化潜热。
type Propellant struct {
	Density         float64 // 液相密度 kg/m³
	CpLiquid        float64 // 液相比热 J/(kg·K)
	ViscosityLiquid float64 // 液相粘度 Pa·s
	BoilingPoint    float64 // 常压沸点 K
	CriticalPoint   float64 // 临界温度 K
	Latent          float64 // 常压汽化潜热 J/kg
	MolarMass       float64 // kg/mol
	Gamma           float64 // 气相比热比
	ViscosityGas    float64 // 气相粘度 Pa·s
	StorageTemp     float64 // 贮存温度 K
}

// R 气体常数 J/(kg·K)
func (f Propellant) R() float64 { return types.RUniversal / f.MolarMass }

// CpGas 气相比热
func (f Propellant) CpGas() float64 { return f.Gamma * f.R() / (f.Gamma - 1) }

// Saturation 压力 p 下的汽化温度
func (f Propellant) Saturation(p float64) float64 {
	inv := 1/f.BoilingPoint - f.R()*math.Log(p/types.AtmPressure)/f.Latent
	if inv <= 1/f.CriticalPoint {
		return f.CriticalPoint
	}
	return 1 / inv
}

// Storage 贮存温度
func (f Propellant) Storage() float64 { return f.StorageTemp }

// Properties 实现 Model
func (f Propellant) Properties(p, t float64) (Properties, error) {
	tnb := f.BoilingPoint
	if t < f.Saturation(p) {
		return Properties{
			Density:   f.Density,
			Enthalpy:  f.CpLiquid*(t-tnb) + (p-types.AtmPressure)/f.Density,
			Entropy:   f.CpLiquid * math.Log(t/tnb),
			Cp:        f.CpLiquid,
			Viscosity: f.ViscosityLiquid,
			Quality:   -1,
		}, nil
	}
	r, cp := f.R(), f.CpGas()
	return Properties{
		Density:   p / (r * t),
		Enthalpy:  f.Latent + cp*(t-tnb),
		Entropy:   f.Latent/tnb + cp*math.Log(t/tnb) - r*math.Log(p/types.AtmPressure),
		Cp:        cp,
		Viscosity: f.ViscosityGas,
		Quality:   -1,
	}, nil
}

func init() {
	Register("oxygen", Propellant{
		Density: 1141, CpLiquid: 1700, ViscosityLiquid: 1.9e-4,
		BoilingPoint: 90.19, CriticalPoint: 154.6, Latent: 213e3,
		MolarMass: 0.031999, Gamma: 1.4, ViscosityGas: 2e-5, StorageTemp: 90,
	}, "lox", "o2", "lo2")
	Register("rp1", Propellant{
		Density: 810, CpLiquid: 2010, ViscosityLiquid: 1.6e-3,
		BoilingPoint: 490, CriticalPoint: 662, Latent: 246e3,
		MolarMass: 0.170, Gamma: 1.05, ViscosityGas: 1e-5, StorageTemp: 293,
	}, "rp-1", "kerosene", "jet-a")
	Register("ethanol", Propellant{
		Density: 789, CpLiquid: 2440, ViscosityLiquid: 1.1e-3,
		BoilingPoint: 351.4, CriticalPoint: 514.7, Latent: 841e3,
		MolarMass: 0.04607, Gamma: 1.13, ViscosityGas: 1e-5, StorageTemp: 293,
	}, "c2h5oh", "etoh")
	Register("methane", Propellant{
		Density: 422, CpLiquid: 3480, ViscosityLiquid: 1.2e-4,
		BoilingPoint: 111.7, CriticalPoint: 190.6, Latent: 510e3,
		MolarMass: 0.01604, Gamma: 1.31, ViscosityGas: 1.1e-5, StorageTemp: 112,
	}, "ch4", "lch4", "lng")
	Register("hydrogen", Propellant{
		Density: 71, CpLiquid: 9700, ViscosityLiquid: 1.3e-5,
		BoilingPoint: 20.3, CriticalPoint: 33.2, Latent: 446e3,
		MolarMass: 0.002016, Gamma: 1.41, ViscosityGas: 8.9e-6, StorageTemp: 20.5,
	}, "h2", "lh2")
	Register("n2o", Propellant{
		Density: 1220, CpLiquid: 1800, ViscosityLiquid: 1e-4,
		BoilingPoint: 184.7, CriticalPoint: 309.6, Latent: 376e3,
		MolarMass: 0.044013, Gamma: 1.27, ViscosityGas: 1.5e-5, StorageTemp: 250,
	}, "nitrous", "nitrous_oxide")
	Register("water", Propellant{
		Density: 998, CpLiquid: 4184, ViscosityLiquid: 1e-3,
		BoilingPoint: 373.15, CriticalPoint: 647, Latent: 2257e3,
		MolarMass: 0.018, Gamma: 1.33, ViscosityGas: 1.2e-5, StorageTemp: 293,
	}, "h2o")
}
