package types

import "sort"

// ComponentKind 元件类别
type ComponentKind string

// 元件类别常量
const (
	KindPump          ComponentKind = "pump"
	KindTurbine       ComponentKind = "turbine"
	KindValve         ComponentKind = "valve"
	KindPipe          ComponentKind = "pipe"
	KindHeatExchanger ComponentKind = "heat_exchanger"
	KindGasGenerator  ComponentKind = "gas_generator"
	KindInjector      ComponentKind = "injector"
)

// ComponentSummary 元件工作点摘要
type ComponentSummary struct {
	Name         string        `json:"name"`
	Kind         ComponentKind `json:"kind"`
	Power        float64       `json:"power"`         // 泵为消耗功率,涡轮为输出功率 W
	PressureDrop float64       `json:"pressure_drop"` // 压降 Pa,泵为负(增压)
	HeatDuty     float64       `json:"heat_duty"`     // 换热量 W
	Inlet        FlowState     `json:"inlet"`
	Outlet       FlowState     `json:"outlet"`
}

// PressureBudget 从贮箱到燃烧室的压力分配
type PressureBudget struct {
	ChamberPressure       float64 `json:"chamber_pressure"`
	InjectorDP            float64 `json:"injector_dp"`
	OxFeedDP              float64 `json:"ox_feed_dp"`
	FuelFeedDP            float64 `json:"fuel_feed_dp"`
	OxValveDP             float64 `json:"ox_valve_dp"`
	FuelValveDP           float64 `json:"fuel_valve_dp"`
	JacketDP              float64 `json:"jacket_dp"`
	TurbineDP             float64 `json:"turbine_dp"` // 膨胀循环涡轮串联压降
	OxTankPressure        float64 `json:"ox_tank_pressure"`
	FuelTankPressure      float64 `json:"fuel_tank_pressure"`
	OxDischargePressure   float64 `json:"ox_discharge_pressure"`
	FuelDischargePressure float64 `json:"fuel_discharge_pressure"`
}

// Performance 循环求解结果,构建后只读。
type Performance struct {
	Cycle             CycleType `json:"cycle"`
	Oxidizer          string    `json:"oxidizer"`
	Fuel              string    `json:"fuel"`
	Thrust            float64   `json:"thrust"`
	ChamberPressure   float64   `json:"chamber_pressure"`
	IspDelivered      float64   `json:"isp_delivered"` // 系统比冲 s
	IspChamber        float64   `json:"isp_chamber"`   // 主燃烧室比冲 s
	CStar             float64   `json:"c_star"`
	ThrustCoefficient float64   `json:"thrust_coefficient"`

	TotalMassFlow       float64 `json:"total_mass_flow"`
	ChamberMassFlow     float64 `json:"chamber_mass_flow"`
	OxMassFlow          float64 `json:"ox_mass_flow"`
	FuelMassFlow        float64 `json:"fuel_mass_flow"`
	MixtureRatio        float64 `json:"mixture_ratio"`         // 燃烧室实际氧燃比
	OverallMixtureRatio float64 `json:"overall_mixture_ratio"` // 含燃气发生器的总氧燃比

	PumpPower    float64 `json:"pump_power"`
	TurbinePower float64 `json:"turbine_power"`
	Residual     float64 `json:"residual"`  // 涡轮功率 - 泵功率 W
	Tolerance    float64 `json:"tolerance"` // 功率容差 W
	Iterations   int     `json:"iterations"`
	Evaluations  int     `json:"evaluations"` // 残差求值次数(含扫描)
	Converged    bool    `json:"converged"`

	GGFraction        float64 `json:"gg_fraction"`
	GGMassFlow        float64 `json:"gg_mass_flow"`
	DischargePressure float64 `json:"discharge_pressure"`
	HeatDuty          float64 `json:"heat_duty"`

	Budget     PressureBudget     `json:"budget"`
	Components []ComponentSummary `json:"components"`
}

// Unknown 隐式架构的求解未知量
func (p Performance) Unknown() float64 {
	switch p.Cycle {
	case CycleGasGenerator:
		return p.GGFraction
	case CycleExpander:
		return p.DischargePressure
	}
	return 0
}

// Metric 按名称取得标量输出
func (p Performance) Metric(name string) (float64, bool) {
	if f, ok := metrics[name]; ok {
		return f(p), true
	}
	return 0, false
}

// MetricNames 可用标量输出名称
func MetricNames() []string {
	names := make([]string, 0, len(metrics))
	for k := range metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var metrics = map[string]func(Performance) float64{
	"isp_delivered":         func(p Performance) float64 { return p.IspDelivered },
	"isp_chamber":           func(p Performance) float64 { return p.IspChamber },
	"c_star":                func(p Performance) float64 { return p.CStar },
	"thrust_coefficient":    func(p Performance) float64 { return p.ThrustCoefficient },
	"total_mass_flow":       func(p Performance) float64 { return p.TotalMassFlow },
	"chamber_mass_flow":     func(p Performance) float64 { return p.ChamberMassFlow },
	"mixture_ratio":         func(p Performance) float64 { return p.MixtureRatio },
	"overall_mixture_ratio": func(p Performance) float64 { return p.OverallMixtureRatio },
	"pump_power":            func(p Performance) float64 { return p.PumpPower },
	"turbine_power":         func(p Performance) float64 { return p.TurbinePower },
	"residual":              func(p Performance) float64 { return p.Residual },
	"gg_fraction":           func(p Performance) float64 { return p.GGFraction },
	"gg_mass_flow":          func(p Performance) float64 { return p.GGMassFlow },
	"discharge_pressure":    func(p Performance) float64 { return p.DischargePressure },
	"heat_duty":             func(p Performance) float64 { return p.HeatDuty },
	"ox_tank_pressure":      func(p Performance) float64 { return p.Budget.OxTankPressure },
	"fuel_tank_pressure":    func(p Performance) float64 { return p.Budget.FuelTankPressure },
}
