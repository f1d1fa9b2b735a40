package combustion

import (
	"fmt"
	"math"

	"turbocycle/maths"
	"turbocycle/types"
)

// Vandenkerckhove Γ(γ) = γ·sqrt((2/(γ+1))^((γ+1)/(γ-1)))
func Vandenkerckhove(gamma float64) float64 {
	return gamma * math.Sqrt(math.Pow(2/(gamma+1), (gamma+1)/(gamma-1)))
}

// CStar 理想特征速度 c* = sqrt(R·Tc)/Γ
func CStar(gamma, r, tc float64) float64 {
	return math.Sqrt(r*tc) / Vandenkerckhove(gamma)
}

// ChamberTemperature 由 c* 反求燃烧温度 Tc = (c*·Γ)²/R
func ChamberTemperature(gamma, r, cstar float64) float64 {
	v := cstar * Vandenkerckhove(gamma)
	return v * v / r
}

// AreaRatio 等熵面积比 A/A*
func AreaRatio(mach, gamma float64) float64 {
	gp1, gm1 := gamma+1, gamma-1
	return (1 / mach) * math.Pow((2/gp1)*(1+0.5*gm1*mach*mach), gp1/(2*gm1))
}

// PressureRatio 等熵静压/总压
func PressureRatio(mach, gamma float64) float64 {
	return math.Pow(1+0.5*(gamma-1)*mach*mach, -gamma/(gamma-1))
}

// TemperatureRatio 等熵静温/总温
func TemperatureRatio(mach, gamma float64) float64 {
	return 1 / (1 + 0.5*(gamma-1)*mach*mach)
}

// MachFromAreaRatio 反解面积比,supersonic 选择超声速支
func MachFromAreaRatio(areaRatio, gamma float64, supersonic bool) (float64, error) {
	if !(areaRatio >= 1) {
		return 0, types.NewInvalidParameter("nozzle", "expansion_ratio", areaRatio, "必须不小于 1")
	}
	if !(gamma > 1) {
		return 0, types.NewInvalidParameter("nozzle", "gamma", gamma, "必须大于 1")
	}
	f := func(m float64) (float64, error) { return AreaRatio(m, gamma) - areaRatio, nil }
	lo, hi := 1e-6, 1.0
	if supersonic {
		lo, hi = 1.0, 50.0
	}
	res, err := maths.Brent(f, lo, hi, maths.Options{XTol: 1e-12, MaxIter: 200})
	if err != nil {
		return 0, fmt.Errorf("面积比 %g 反解马赫数失败: %w", areaRatio, err)
	}
	return res.Root, nil
}

// ExitPressureRatio 喷管出口压比 pe/pc
func ExitPressureRatio(gamma, expansionRatio float64) (float64, error) {
	me, err := MachFromAreaRatio(expansionRatio, gamma, true)
	if err != nil {
		return 0, err
	}
	return PressureRatio(me, gamma), nil
}

// ThrustCoefficient 推力系数,动量项加压力项
func ThrustCoefficient(gamma, expansionRatio, pePc, paPc float64) float64 {
	gm1, gp1 := gamma-1, gamma+1
	momentum := math.Sqrt(2 * gamma * gamma / gm1 * math.Pow(2/gp1, gp1/gm1) * (1 - math.Pow(pePc, gm1/gamma)))
	return momentum + (pePc-paPc)*expansionRatio
}

// SpecificImpulse 比冲 Isp = c*·CF/g0
func SpecificImpulse(cstar, cf float64) float64 { return cstar * cf / types.G0 }

// Nozzle 理想喷管性能,CF 对应环境压力,CFVacuum 对应真空
type Nozzle struct {
	ExitMach        float64 `json:"exit_mach"`
	ExitPressure    float64 `json:"exit_pressure"`
	CF              float64 `json:"cf"`
	CFVacuum        float64 `json:"cf_vacuum"`
	ExpansionRatio  float64 `json:"expansion_ratio"`
	ChamberPressure float64 `json:"chamber_pressure"`
	AmbientPressure float64 `json:"ambient_pressure"`
}

// NewNozzle 计算给定 γ、面积比、室压与环境压力下的喷管性能
func NewNozzle(gamma, expansionRatio, pc, pa float64) (Nozzle, error) {
	if !(pc > 0) {
		return Nozzle{}, types.NewInvalidParameter("nozzle", "chamber_pressure", pc, "必须为正")
	}
	if pa < 0 {
		return Nozzle{}, types.NewInvalidParameter("nozzle", "ambient_pressure", pa, "不能为负")
	}
	me, err := MachFromAreaRatio(expansionRatio, gamma, true)
	if err != nil {
		return Nozzle{}, err
	}
	pe := PressureRatio(me, gamma)
	return Nozzle{
		ExitMach:        me,
		ExitPressure:    pe * pc,
		CF:              ThrustCoefficient(gamma, expansionRatio, pe, pa/pc),
		CFVacuum:        ThrustCoefficient(gamma, expansionRatio, pe, 0),
		ExpansionRatio:  expansionRatio,
		ChamberPressure: pc,
		AmbientPressure: pa,
	}, nil
}
