package types

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultGGMixtureRatio 燃气发生器默认富燃混合比
const DefaultGGMixtureRatio = 0.35

// Line 输送管路几何
type Line struct {
	Diameter     float64 `json:"diameter" yaml:"diameter"`           // 内径 m
	Length       float64 `json:"length" yaml:"length"`               // 长度 m
	Roughness    float64 `json:"roughness" yaml:"roughness"`         // 绝对粗糙度 m
	MinorLoss    float64 `json:"minor_loss" yaml:"minor_loss"`       // 局部损失系数之和
	HeightChange float64 `json:"height_change" yaml:"height_change"` // 高度变化 m,向上为正
}

func (l Line) withDefaults() Line {
	if l.Diameter == 0 {
		l.Diameter = DefaultLineDiameter
	}
	if l.Length == 0 {
		l.Length = DefaultLineLength
	}
	if l.Roughness == 0 {
		l.Roughness = DefaultLineRoughness
	}
	if l.MinorLoss == 0 {
		l.MinorLoss = DefaultLineMinorLoss
	}
	return l
}

// Definition 循环设计点定义,只读输入。
// 零值字段由 WithDefaults 填充默认值。
type Definition struct {
	Cycle    CycleType `json:"cycle" yaml:"cycle"`
	Oxidizer string    `json:"oxidizer" yaml:"oxidizer"`
	Fuel     string    `json:"fuel" yaml:"fuel"`

	Thrust             float64 `json:"thrust" yaml:"thrust"`                             // 推力 N
	ChamberPressure    float64 `json:"chamber_pressure" yaml:"chamber_pressure"`         // 燃烧室压力 Pa
	MixtureRatio       float64 `json:"mixture_ratio" yaml:"mixture_ratio"`               // 氧燃比
	CStar              float64 `json:"c_star" yaml:"c_star"`                             // 特征速度 m/s,0 表示查表
	ExpansionRatio     float64 `json:"expansion_ratio" yaml:"expansion_ratio"`           // 喷管面积比
	AmbientPressure    float64 `json:"ambient_pressure" yaml:"ambient_pressure"`         // 环境压力 Pa
	InjectorDPFraction float64 `json:"injector_dp_fraction" yaml:"injector_dp_fraction"` // 喷注器压降/燃烧室压力

	// 供应系统
	OxTankPressure      float64 `json:"ox_tank_pressure" yaml:"ox_tank_pressure"`
	FuelTankPressure    float64 `json:"fuel_tank_pressure" yaml:"fuel_tank_pressure"`
	OxTankTemperature   float64 `json:"ox_tank_temperature" yaml:"ox_tank_temperature"`
	FuelTankTemperature float64 `json:"fuel_tank_temperature" yaml:"fuel_tank_temperature"`
	OxFeed              Line    `json:"ox_feed" yaml:"ox_feed"`
	FuelFeed            Line    `json:"fuel_feed" yaml:"fuel_feed"`
	OxValveDP           float64 `json:"ox_valve_dp" yaml:"ox_valve_dp"`
	FuelValveDP         float64 `json:"fuel_valve_dp" yaml:"fuel_valve_dp"`

	// 涡轮泵
	OxPumpEfficiency       float64 `json:"ox_pump_efficiency" yaml:"ox_pump_efficiency"`
	FuelPumpEfficiency     float64 `json:"fuel_pump_efficiency" yaml:"fuel_pump_efficiency"`
	TurbineEfficiency      float64 `json:"turbine_efficiency" yaml:"turbine_efficiency"`
	TurbineExhaustPressure float64 `json:"turbine_exhaust_pressure" yaml:"turbine_exhaust_pressure"`

	// 燃气发生器
	GGMixtureRatio     float64 `json:"gg_mixture_ratio" yaml:"gg_mixture_ratio"`
	GGCStar            float64 `json:"gg_c_star" yaml:"gg_c_star"`
	GGPressureFraction float64 `json:"gg_pressure_fraction" yaml:"gg_pressure_fraction"`

	// 膨胀循环冷却套
	HXEffectiveness   float64 `json:"hx_effectiveness" yaml:"hx_effectiveness"`
	CoolantFraction   float64 `json:"coolant_fraction" yaml:"coolant_fraction"`
	JacketDPHot       float64 `json:"jacket_dp_hot" yaml:"jacket_dp_hot"`
	JacketDPCold      float64 `json:"jacket_dp_cold" yaml:"jacket_dp_cold"`
	JacketGasFraction float64 `json:"jacket_gas_fraction" yaml:"jacket_gas_fraction"`
	MaxDischargeRatio float64 `json:"max_discharge_ratio" yaml:"max_discharge_ratio"`
}

// WithDefaults 返回零值字段填充默认值后的副本
func (d Definition) WithDefaults() Definition {
	def := func(v *float64, x float64) {
		if *v == 0 {
			*v = x
		}
	}
	def(&d.ExpansionRatio, DefaultExpansionRatio)
	def(&d.InjectorDPFraction, DefaultInjectorDPFraction)
	def(&d.OxTankPressure, DefaultPumpInletPressure)
	def(&d.FuelTankPressure, DefaultPumpInletPressure)
	d.OxFeed = d.OxFeed.withDefaults()
	d.FuelFeed = d.FuelFeed.withDefaults()
	def(&d.OxValveDP, DefaultValveDP)
	def(&d.FuelValveDP, DefaultValveDP)
	def(&d.OxPumpEfficiency, DefaultPumpEfficiency)
	def(&d.FuelPumpEfficiency, DefaultPumpEfficiency)
	def(&d.TurbineEfficiency, DefaultTurbineEfficiency)
	def(&d.TurbineExhaustPressure, DefaultTurbineExhaust)
	def(&d.GGMixtureRatio, DefaultGGMixtureRatio)
	def(&d.GGPressureFraction, DefaultGGPressureFraction)
	def(&d.HXEffectiveness, DefaultHXEffectiveness)
	def(&d.CoolantFraction, DefaultCoolantFraction)
	def(&d.JacketDPHot, DefaultJacketDPHot)
	def(&d.JacketDPCold, DefaultJacketDPCold)
	def(&d.JacketGasFraction, DefaultJacketGasFraction)
	def(&d.MaxDischargeRatio, DefaultMaxDischargeRatio)
	return d
}

// InjectorDP 喷注器压降 Pa
func (d Definition) InjectorDP() float64 { return d.InjectorDPFraction * d.ChamberPressure }

// Validate 检查设计点的物理合理性
func (d Definition) Validate() error {
	const name = "definition"
	if !d.Cycle.Valid() {
		return NewInvalidParameter(name, "cycle", float64(d.Cycle), "未知循环架构")
	}
	if strings.TrimSpace(d.Oxidizer) == "" {
		return NewInvalidParameter(name, "oxidizer", 0, "未指定氧化剂")
	}
	if strings.TrimSpace(d.Fuel) == "" {
		return NewInvalidParameter(name, "fuel", 0, "未指定燃料")
	}
	checks := []struct {
		param string
		value float64
		ok    bool
		why   string
	}{
		{"thrust", d.Thrust, d.Thrust > 0, "必须为正"},
		{"chamber_pressure", d.ChamberPressure, d.ChamberPressure > 0, "必须为正"},
		{"mixture_ratio", d.MixtureRatio, d.MixtureRatio > 0, "必须为正"},
		{"c_star", d.CStar, d.CStar >= 0, "不能为负"},
		{"expansion_ratio", d.ExpansionRatio, d.ExpansionRatio > 1, "必须大于 1"},
		{"ambient_pressure", d.AmbientPressure, d.AmbientPressure >= 0, "不能为负"},
		{"injector_dp_fraction", d.InjectorDPFraction, d.InjectorDPFraction >= 0, "不能为负"},
		{"ox_tank_pressure", d.OxTankPressure, d.OxTankPressure > 0, "必须为正"},
		{"fuel_tank_pressure", d.FuelTankPressure, d.FuelTankPressure > 0, "必须为正"},
		{"ox_tank_temperature", d.OxTankTemperature, d.OxTankTemperature >= 0, "不能为负"},
		{"fuel_tank_temperature", d.FuelTankTemperature, d.FuelTankTemperature >= 0, "不能为负"},
		{"ox_valve_dp", d.OxValveDP, d.OxValveDP >= 0, "不能为负"},
		{"fuel_valve_dp", d.FuelValveDP, d.FuelValveDP >= 0, "不能为负"},
		{"ox_pump_efficiency", d.OxPumpEfficiency, unitInterval(d.OxPumpEfficiency), "必须位于 (0, 1]"},
		{"fuel_pump_efficiency", d.FuelPumpEfficiency, unitInterval(d.FuelPumpEfficiency), "必须位于 (0, 1]"},
		{"turbine_efficiency", d.TurbineEfficiency, unitInterval(d.TurbineEfficiency), "必须位于 (0, 1]"},
		{"turbine_exhaust_pressure", d.TurbineExhaustPressure, d.TurbineExhaustPressure > 0, "必须为正"},
		{"gg_mixture_ratio", d.GGMixtureRatio, d.GGMixtureRatio > 0, "必须为正"},
		{"gg_c_star", d.GGCStar, d.GGCStar >= 0, "不能为负"},
		{"gg_pressure_fraction", d.GGPressureFraction, d.GGPressureFraction > 0, "必须为正"},
		{"hx_effectiveness", d.HXEffectiveness, unitInterval(d.HXEffectiveness), "必须位于 (0, 1]"},
		{"coolant_fraction", d.CoolantFraction, unitInterval(d.CoolantFraction), "必须位于 (0, 1]"},
		{"jacket_dp_hot", d.JacketDPHot, d.JacketDPHot >= 0, "不能为负"},
		{"jacket_dp_cold", d.JacketDPCold, d.JacketDPCold >= 0, "不能为负"},
		{"jacket_gas_fraction", d.JacketGasFraction, unitInterval(d.JacketGasFraction), "必须位于 (0, 1]"},
		{"max_discharge_ratio", d.MaxDischargeRatio, d.MaxDischargeRatio > 1, "必须大于 1"},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return NewInvalidParameter(name, c.param, c.value, "不是有限数值")
		}
		if !c.ok {
			return NewInvalidParameter(name, c.param, c.value, c.why)
		}
	}
	for _, l := range []struct {
		prefix string
		line   Line
	}{{"ox_feed", d.OxFeed}, {"fuel_feed", d.FuelFeed}} {
		if err := l.line.validate(name, l.prefix); err != nil {
			return err
		}
	}
	return nil
}

func (l Line) validate(component, prefix string) error {
	switch {
	case !(l.Diameter > 0):
		return NewInvalidParameter(component, prefix+".diameter", l.Diameter, "必须为正")
	case l.Length < 0:
		return NewInvalidParameter(component, prefix+".length", l.Length, "不能为负")
	case l.Roughness < 0:
		return NewInvalidParameter(component, prefix+".roughness", l.Roughness, "不能为负")
	case l.MinorLoss < 0:
		return NewInvalidParameter(component, prefix+".minor_loss", l.MinorLoss, "不能为负")
	}
	return nil
}

func unitInterval(v float64) bool { return v > 0 && v <= 1 }

// field 按文档名称取得数值字段
func (d *Definition) field(name string) *float64 {
	switch name {
	case "thrust":
		return &d.Thrust
	case "chamber_pressure":
		return &d.ChamberPressure
	case "mixture_ratio":
		return &d.MixtureRatio
	case "c_star":
		return &d.CStar
	case "expansion_ratio":
		return &d.ExpansionRatio
	case "ambient_pressure":
		return &d.AmbientPressure
	case "injector_dp_fraction":
		return &d.InjectorDPFraction
	case "ox_tank_pressure":
		return &d.OxTankPressure
	case "fuel_tank_pressure":
		return &d.FuelTankPressure
	case "ox_tank_temperature":
		return &d.OxTankTemperature
	case "fuel_tank_temperature":
		return &d.FuelTankTemperature
	case "ox_valve_dp":
		return &d.OxValveDP
	case "fuel_valve_dp":
		return &d.FuelValveDP
	case "ox_pump_efficiency":
		return &d.OxPumpEfficiency
	case "fuel_pump_efficiency":
		return &d.FuelPumpEfficiency
	case "turbine_efficiency":
		return &d.TurbineEfficiency
	case "turbine_exhaust_pressure":
		return &d.TurbineExhaustPressure
	case "gg_mixture_ratio":
		return &d.GGMixtureRatio
	case "gg_c_star":
		return &d.GGCStar
	case "gg_pressure_fraction":
		return &d.GGPressureFraction
	case "hx_effectiveness":
		return &d.HXEffectiveness
	case "coolant_fraction":
		return &d.CoolantFraction
	case "jacket_dp_hot":
		return &d.JacketDPHot
	case "jacket_dp_cold":
		return &d.JacketDPCold
	case "jacket_gas_fraction":
		return &d.JacketGasFraction
	case "max_discharge_ratio":
		return &d.MaxDischargeRatio
	case "ox_feed.diameter":
		return &d.OxFeed.Diameter
	case "ox_feed.length":
		return &d.OxFeed.Length
	case "fuel_feed.diameter":
		return &d.FuelFeed.Diameter
	case "fuel_feed.length":
		return &d.FuelFeed.Length
	}
	return nil
}

// Get 按文档名称读取数值字段
func (d Definition) Get(name string) (float64, bool) {
	if p := d.field(name); p != nil {
		return *p, true
	}
	return 0, false
}

// With 返回指定数值字段替换后的副本
func (d Definition) With(name string, value float64) (Definition, error) {
	p := d.field(name)
	if p == nil {
		return d, fmt.Errorf("未知设计参数: %q", name)
	}
	*p = value
	return d, nil
}

// ParameterNames 可按名称访问的数值字段
func ParameterNames() []string {
	names := []string{
		"thrust", "chamber_pressure", "mixture_ratio", "c_star", "expansion_ratio",
		"ambient_pressure", "injector_dp_fraction", "ox_tank_pressure", "fuel_tank_pressure",
		"ox_tank_temperature", "fuel_tank_temperature", "ox_valve_dp", "fuel_valve_dp",
		"ox_pump_efficiency", "fuel_pump_efficiency", "turbine_efficiency",
		"turbine_exhaust_pressure", "gg_mixture_ratio", "gg_c_star", "gg_pressure_fraction",
		"hx_effectiveness", "coolant_fraction", "jacket_dp_hot", "jacket_dp_cold",
		"jacket_gas_fraction", "max_discharge_ratio", "ox_feed.diameter", "ox_feed.length",
		"fuel_feed.diameter", "fuel_feed.length",
	}
	sort.Strings(names)
	return names
}
