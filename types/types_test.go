package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
)

func definition() Definition {
	return Definition{
		Cycle: CycleGasGenerator, Oxidizer: "lox", Fuel: "rp1",
		Thrust: 10e3, ChamberPressure: 5e6, MixtureRatio: 2.7,
	}
}

func TestWithDefaults(t *testing.T) {
	d := definition()
	d.TurbineEfficiency = 0.7
	d = d.WithDefaults()
	if d.TurbineEfficiency != 0.7 {
		t.Errorf("已设置字段被覆盖: %g", d.TurbineEfficiency)
	}
	if d.ExpansionRatio != DefaultExpansionRatio || d.OxFeed.Diameter != DefaultLineDiameter {
		t.Errorf("默认值未填充: %+v", d)
	}
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}
	if d.InjectorDP() != DefaultInjectorDPFraction*5e6 {
		t.Errorf("喷注器压降 %g", d.InjectorDP())
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		param  string
		modify func(*Definition)
	}{
		{"cycle", func(d *Definition) { d.Cycle = CycleUnknown }},
		{"fuel", func(d *Definition) { d.Fuel = " " }},
		{"thrust", func(d *Definition) { d.Thrust = 0 }},
		{"chamber_pressure", func(d *Definition) { d.ChamberPressure = math.NaN() }},
		{"turbine_efficiency", func(d *Definition) { d.TurbineEfficiency = 1.2 }},
		{"hx_effectiveness", func(d *Definition) { d.HXEffectiveness = -0.5 }},
		{"max_discharge_ratio", func(d *Definition) { d.MaxDischargeRatio = 0.5 }},
		{"ox_feed.diameter", func(d *Definition) { d.OxFeed.Diameter = -1 }},
		{"fuel_feed.length", func(d *Definition) { d.FuelFeed.Length = -1 }},
	}
	for _, c := range cases {
		d := definition().WithDefaults()
		c.modify(&d)
		err := d.Validate()
		var ip *InvalidParameterError
		if !errors.As(err, &ip) {
			t.Errorf("%s: 应返回参数错误, got %v", c.param, err)
			continue
		}
		if ip.Parameter != c.param {
			t.Errorf("参数名 %s, 期望 %s", ip.Parameter, c.param)
		}
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%s: 未匹配 ErrInvalidParameter", c.param)
		}
	}
}

func TestGetWith(t *testing.T) {
	d := definition()
	for _, name := range ParameterNames() {
		if _, ok := d.Get(name); !ok {
			t.Errorf("参数 %s 不可读", name)
		}
	}
	e, err := d.With("fuel_feed.diameter", 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if e.FuelFeed.Diameter != 0.05 || d.FuelFeed.Diameter != 0 {
		t.Errorf("With 应返回副本: %g %g", e.FuelFeed.Diameter, d.FuelFeed.Diameter)
	}
	if _, err := d.With("warp", 1); err == nil {
		t.Error("未知参数应报错")
	}
	if _, ok := d.Get("warp"); ok {
		t.Error("未知参数不应可读")
	}
}

func TestCycleType(t *testing.T) {
	for name, want := range map[string]CycleType{
		"gg": CycleGasGenerator, "Pressure-Fed": CyclePressureFed, " expander ": CycleExpander,
	} {
		got, err := ParseCycleType(name)
		if err != nil || got != want {
			t.Errorf("%q: %v %v", name, got, err)
		}
	}
	if _, err := ParseCycleType("staged"); err == nil {
		t.Error("未知架构应报错")
	}
	for _, c := range CycleTypes() {
		if !c.Valid() || c.String() == "unknown" {
			t.Errorf("架构 %d 无效", c)
		}
		if c.Implicit() != (c.UnknownName() != "") {
			t.Errorf("%s: 隐式架构应有未知量名称", c)
		}
	}

	data, err := json.Marshal(definition())
	if err != nil {
		t.Fatal(err)
	}
	var back Definition
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Cycle != CycleGasGenerator {
		t.Errorf("JSON 解码架构 %s", back.Cycle)
	}
	if _, err := json.Marshal(Definition{}); err == nil {
		t.Error("未知架构不应编码")
	}
}

func TestPerformanceMetric(t *testing.T) {
	p := Performance{Cycle: CycleExpander, IspDelivered: 330, DischargePressure: 8e6}
	p.Budget.OxTankPressure = 3e5
	if v, ok := p.Metric("isp_delivered"); !ok || v != 330 {
		t.Errorf("isp_delivered=%g %v", v, ok)
	}
	if v, _ := p.Metric("ox_tank_pressure"); v != 3e5 {
		t.Errorf("ox_tank_pressure=%g", v)
	}
	if _, ok := p.Metric("warp"); ok {
		t.Error("未知输出量")
	}
	if p.Unknown() != 8e6 {
		t.Errorf("膨胀循环未知量 %g", p.Unknown())
	}
	for _, name := range MetricNames() {
		if _, ok := p.Metric(name); !ok {
			t.Errorf("输出量 %s 不可读", name)
		}
	}
}

func TestInfeasible(t *testing.T) {
	unsolvable := fmt.Errorf("wrap: %w", &PowerBalanceUnsolvable{Cycle: CycleGasGenerator})
	if !Infeasible(unsolvable) || !errors.Is(unsolvable, ErrUnsolvable) {
		t.Error("无解应为不可行")
	}
	if !Infeasible(&ConvergenceError{Cycle: CycleExpander}) {
		t.Error("未收敛应为不可行")
	}
	if Infeasible(NewInvalidParameter("pump", "efficiency", 2, "越界")) {
		t.Error("参数错误不是不可行")
	}
}
