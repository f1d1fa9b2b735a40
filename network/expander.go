package network

import (
	"turbocycle/element"
	"turbocycle/fluid"
	"turbocycle/types"
)

// Expander 闭式膨胀循环,未知量为燃料泵出口压力。
//
//	燃料: 贮箱 → 泵 → 管路 → 冷却套冷侧 → 涡轮 → 阀门 → 喷注器
//	旁路: 管路出口 (1-φ) 节流到涡轮出口压力后与涡轮排气混合
//	氧化剂: 贮箱 → 泵 → 管路 → 阀门 → 喷注器
type Expander struct {
	env Env
	def types.Definition
	ch  chamber

	oxIn   types.FlowState
	oxPump element.PumpResult
	oxLeg  leg
	oxSums []types.ComponentSummary

	fuelIn        types.FlowState
	hot           types.FlowState // 冷却套热侧燃气
	turbineOutlet float64
	lo, hi        float64
}

// NewExpander 计算与泵出口压力无关的部分:燃烧室、氧化剂路、热侧燃气与定义域
func NewExpander(env Env, def types.Definition) (*Expander, error) {
	ch, err := newChamber(env, def)
	if err != nil {
		return nil, err
	}
	e := &Expander{def: def, ch: ch}
	pc, inj := def.ChamberPressure, def.InjectorDP()

	gas, err := fluid.NewIdealGas(ch.gas.Gamma, ch.gas.MolarMass)
	if err != nil {
		return nil, err
	}
	gasName := "chamber:" + def.Oxidizer + "/" + def.Fuel
	e.env = Env{Fluids: fluid.Overlay(env.Fluids, gasName, gas), Combustion: env.Combustion}
	prov := e.env.Fluids
	if e.hot, err = fluid.State(prov, gasName, pc, def.JacketGasFraction*ch.gas.ChamberTemperature, ch.mdot); err != nil {
		return nil, err
	}

	oxT, err := tankTemperature(env, def.Oxidizer, def.OxTankTemperature)
	if err != nil {
		return nil, err
	}
	if e.oxIn, err = fluid.State(prov, def.Oxidizer, def.OxTankPressure, oxT, ch.oxFlow); err != nil {
		return nil, err
	}
	oxDown := pc + inj + def.OxValveDP
	oxLine, err := lineDrop(e.env, def.Oxidizer, oxDown, oxT, ch.oxFlow, def.OxFeed)
	if err != nil {
		return nil, err
	}
	if e.oxPump, err = element.Pump(prov, e.oxIn, oxDown+oxLine, def.OxPumpEfficiency); err != nil {
		return nil, err
	}
	if e.oxLeg, e.oxSums, err = traceLeg(e.env, "ox", e.oxPump.Outlet, def.OxFeed, def.OxValveDP, pc); err != nil {
		return nil, err
	}

	fuelT, err := tankTemperature(env, def.Fuel, def.FuelTankTemperature)
	if err != nil {
		return nil, err
	}
	if e.fuelIn, err = fluid.State(prov, def.Fuel, def.FuelTankPressure, fuelT, ch.fuelFlow); err != nil {
		return nil, err
	}
	e.turbineOutlet = pc + inj + def.FuelValveDP
	fuelLine, err := lineDrop(e.env, def.Fuel, e.turbineOutlet, fuelT, ch.fuelFlow, def.FuelFeed)
	if err != nil {
		return nil, err
	}
	e.lo = e.turbineOutlet + def.JacketDPCold + fuelLine + types.DischargeMargin
	e.lo = max(e.lo, def.FuelTankPressure+types.DischargeMargin)
	e.hi = def.MaxDischargeRatio * pc
	if !(e.lo < e.hi) {
		return nil, types.NewInvalidParameter("expander", "max_discharge_ratio", def.MaxDischargeRatio, "泵出口压力上限低于最小可行压力")
	}
	return e, nil
}

// Cycle 架构类型
func (e *Expander) Cycle() types.CycleType { return types.CycleExpander }

// Bounds 泵出口压力的定义域
func (e *Expander) Bounds() (lo, hi float64) { return e.lo, e.hi }

// Residual W_t - (W_ox + W_fuel)
func (e *Expander) Residual(pd float64) (float64, error) { return residualOf(e, pd) }

// Evaluate 在燃料泵出口压力 pd 处求解网络
func (e *Expander) Evaluate(pd float64) (types.Performance, error) {
	def, ch, prov := e.def, e.ch, e.env.Fluids
	phi := def.CoolantFraction

	fuelPump, err := element.Pump(prov, e.fuelIn, pd, def.FuelPumpEfficiency)
	if err != nil {
		return types.Performance{}, err
	}
	line, err := element.Pipe(prov, fuelPump.Outlet, def.FuelFeed)
	if err != nil {
		return types.Performance{}, err
	}
	cool := line.Outlet.WithMassFlow(phi * ch.fuelFlow)
	hx, err := element.HeatExchanger(prov, e.hot, cool, element.HXSpec{
		Effectiveness: def.HXEffectiveness,
		DPHot:         def.JacketDPHot,
		DPCold:        def.JacketDPCold,
	})
	if err != nil {
		return types.Performance{}, err
	}
	turb, err := element.Turbine(prov, hx.ColdOutlet, e.turbineOutlet, def.TurbineEfficiency)
	if err != nil {
		return types.Performance{}, err
	}

	sums := []types.ComponentSummary{
		e.oxPump.Summary("ox_pump", e.oxIn),
		fuelPump.Summary("fuel_pump", e.fuelIn),
		line.Summary("fuel_feed_line", fuelPump.Outlet),
		hx.Summary("regen_jacket", cool),
		turb.Summary("turbine", hx.ColdOutlet),
	}
	mixed := turb.Outlet
	if phi < 1 {
		byIn := line.Outlet.WithMassFlow((1 - phi) * ch.fuelFlow)
		bypass, err := element.Valve(prov, byIn, element.ValveSpec{DP: byIn.Pressure - e.turbineOutlet})
		if err != nil {
			return types.Performance{}, err
		}
		sums = append(sums, bypass.Summary("fuel_bypass", byIn))
		h := phi*turb.Outlet.Enthalpy + (1-phi)*bypass.Outlet.Enthalpy
		if mixed, err = fluid.StateFromPH(prov, def.Fuel, e.turbineOutlet, h, ch.fuelFlow); err != nil {
			return types.Performance{}, err
		}
	}
	valve, err := element.Valve(prov, mixed, element.ValveSpec{DP: def.FuelValveDP})
	if err != nil {
		return types.Performance{}, err
	}
	sums = append(sums, valve.Summary("fuel_valve", mixed))
	_, injSum, err := traceInjector(e.env, "fuel", valve.Outlet, def.ChamberPressure)
	if err != nil {
		return types.Performance{}, err
	}
	sums = append(sums, injSum)

	pumps := e.oxPump.Power + fuelPump.Power
	perf := ch.performance(def)
	perf.IspDelivered = def.Thrust / (ch.mdot * types.G0)
	perf.TotalMassFlow = ch.mdot
	perf.OxMassFlow = ch.oxFlow
	perf.FuelMassFlow = ch.fuelFlow
	perf.OverallMixtureRatio = perf.MixtureRatio
	perf.PumpPower = pumps
	perf.TurbinePower = turb.Power
	perf.Residual = turb.Power - pumps
	perf.DischargePressure = pd
	perf.HeatDuty = hx.HeatDuty
	perf.Budget = types.PressureBudget{
		ChamberPressure:       def.ChamberPressure,
		InjectorDP:            def.InjectorDP(),
		OxFeedDP:              e.oxLeg.pipe.PressureDrop,
		FuelFeedDP:            line.PressureDrop,
		OxValveDP:             e.oxLeg.valve.PressureDrop,
		FuelValveDP:           valve.PressureDrop,
		JacketDP:              cool.Pressure - hx.ColdOutlet.Pressure,
		TurbineDP:             hx.ColdOutlet.Pressure - e.turbineOutlet,
		OxTankPressure:        e.oxIn.Pressure,
		FuelTankPressure:      e.fuelIn.Pressure,
		OxDischargePressure:   e.oxPump.Outlet.Pressure,
		FuelDischargePressure: pd,
	}
	perf.Components = append(sums, e.oxSums...)
	return perf, nil
}
