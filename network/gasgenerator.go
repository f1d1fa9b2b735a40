package network

import (
	"turbocycle/combustion"
	"turbocycle/element"
	"turbocycle/fluid"
	"turbocycle/types"
)

// GasGenerator 燃气发生器循环,未知量为燃气发生器流量占总流量的比例 x。
//
//	贮箱 → 泵 → 管路 → 阀门 → 喷注器 → 燃烧室
//	泵出口分流 → 燃气发生器 → 涡轮 → 排出
type GasGenerator struct {
	env Env
	def types.Definition
	ch  chamber

	oxIn, fuelIn  types.FlowState // 泵入口(贮箱)状态,流量按需替换
	oxDischarge   float64
	fuelDischarge float64

	gasName    string
	gasTemp    float64
	ggPressure float64
}

// NewGasGenerator 计算与 x 无关的部分:燃烧室、泵出口压力、燃气物性
func NewGasGenerator(env Env, def types.Definition) (*GasGenerator, error) {
	ch, err := newChamber(env, def)
	if err != nil {
		return nil, err
	}
	g := &GasGenerator{def: def, ch: ch}
	pc, inj := def.ChamberPressure, def.InjectorDP()

	pump := func(name string, pTank, t, mdot, valveDP float64, line types.Line) (types.FlowState, float64, error) {
		t, err := tankTemperature(env, name, t)
		if err != nil {
			return types.FlowState{}, 0, err
		}
		in, err := fluid.State(env.Fluids, name, pTank, t, mdot)
		if err != nil {
			return types.FlowState{}, 0, err
		}
		pDown := pc + inj + valveDP
		dp, err := lineDrop(env, name, pDown, t, mdot, line)
		if err != nil {
			return types.FlowState{}, 0, err
		}
		return in, pDown + dp, nil
	}
	if g.oxIn, g.oxDischarge, err = pump(def.Oxidizer, def.OxTankPressure, def.OxTankTemperature, ch.oxFlow, def.OxValveDP, def.OxFeed); err != nil {
		return nil, err
	}
	if g.fuelIn, g.fuelDischarge, err = pump(def.Fuel, def.FuelTankPressure, def.FuelTankTemperature, ch.fuelFlow, def.FuelValveDP, def.FuelFeed); err != nil {
		return nil, err
	}

	gas, err := env.Combustion.Lookup(def.Oxidizer, def.Fuel, def.GGMixtureRatio)
	if err != nil {
		return nil, err
	}
	model, err := fluid.NewIdealGas(gas.Gamma, gas.MolarMass)
	if err != nil {
		return nil, err
	}
	g.gasTemp = gas.ChamberTemperature
	if def.GGCStar > 0 {
		g.gasTemp = combustion.ChamberTemperature(gas.Gamma, gas.R(), def.GGCStar)
	}
	g.gasName = "gg:" + def.Oxidizer + "/" + def.Fuel
	g.env = Env{Fluids: fluid.Overlay(env.Fluids, g.gasName, model), Combustion: env.Combustion}

	g.ggPressure = def.GGPressureFraction * pc
	if !(g.ggPressure > def.TurbineExhaustPressure) {
		return nil, types.NewInvalidParameter("gas_generator", "turbine_exhaust_pressure", def.TurbineExhaustPressure, "不低于燃气发生器压力")
	}
	if g.ggPressure > g.oxDischarge || g.ggPressure > g.fuelDischarge {
		return nil, types.NewInvalidParameter("gas_generator", "gg_pressure_fraction", def.GGPressureFraction, "燃气发生器压力高于泵出口压力")
	}
	return g, nil
}

// Cycle 架构类型
func (g *GasGenerator) Cycle() types.CycleType { return types.CycleGasGenerator }

// Bounds x 的定义域
func (g *GasGenerator) Bounds() (lo, hi float64) { return types.GGFractionMin, types.GGFractionMax }

// Residual W_t - (W_ox + W_fuel)
func (g *GasGenerator) Residual(x float64) (float64, error) { return residualOf(g, x) }

// Evaluate 在 x 处求解网络
func (g *GasGenerator) Evaluate(x float64) (types.Performance, error) {
	if !(x > 0 && x < 1) {
		return types.Performance{}, types.NewInvalidParameter("gas_generator", "gg_fraction", x, "必须位于 (0, 1)")
	}
	def, ch, prov := g.def, g.ch, g.env.Fluids
	total := ch.mdot / (1 - x)
	gg := x * total
	ggOx := gg * def.GGMixtureRatio / (1 + def.GGMixtureRatio)
	ggFuel := gg - ggOx

	oxIn := g.oxIn.WithMassFlow(ch.oxFlow + ggOx)
	oxPump, err := element.Pump(prov, oxIn, g.oxDischarge, def.OxPumpEfficiency)
	if err != nil {
		return types.Performance{}, err
	}
	fuelIn := g.fuelIn.WithMassFlow(ch.fuelFlow + ggFuel)
	fuelPump, err := element.Pump(prov, fuelIn, g.fuelDischarge, def.FuelPumpEfficiency)
	if err != nil {
		return types.Performance{}, err
	}

	pc := def.ChamberPressure
	oxLeg, oxSums, err := traceLeg(g.env, "ox", oxPump.Outlet.WithMassFlow(ch.oxFlow), def.OxFeed, def.OxValveDP, pc)
	if err != nil {
		return types.Performance{}, err
	}
	fuelLeg, fuelSums, err := traceLeg(g.env, "fuel", fuelPump.Outlet.WithMassFlow(ch.fuelFlow), def.FuelFeed, def.FuelValveDP, pc)
	if err != nil {
		return types.Performance{}, err
	}

	ggIn, err := fluid.State(prov, g.gasName, g.ggPressure, g.gasTemp, gg)
	if err != nil {
		return types.Performance{}, err
	}
	turb, err := element.Turbine(prov, ggIn, def.TurbineExhaustPressure, def.TurbineEfficiency)
	if err != nil {
		return types.Performance{}, err
	}

	pumps := oxPump.Power + fuelPump.Power
	perf := ch.performance(def)
	perf.IspDelivered = def.Thrust / (total * types.G0)
	perf.TotalMassFlow = total
	perf.OxMassFlow = oxIn.MassFlow
	perf.FuelMassFlow = fuelIn.MassFlow
	perf.OverallMixtureRatio = oxIn.MassFlow / fuelIn.MassFlow
	perf.PumpPower = pumps
	perf.TurbinePower = turb.Power
	perf.Residual = turb.Power - pumps
	perf.GGFraction = x
	perf.GGMassFlow = gg
	perf.Budget = types.PressureBudget{
		ChamberPressure:       pc,
		InjectorDP:            def.InjectorDP(),
		OxFeedDP:              oxLeg.pipe.PressureDrop,
		FuelFeedDP:            fuelLeg.pipe.PressureDrop,
		OxValveDP:             oxLeg.valve.PressureDrop,
		FuelValveDP:           fuelLeg.valve.PressureDrop,
		OxTankPressure:        oxIn.Pressure,
		FuelTankPressure:      fuelIn.Pressure,
		OxDischargePressure:   g.oxDischarge,
		FuelDischargePressure: g.fuelDischarge,
	}

	ggSum := types.ComponentSummary{
		Name:         "gas_generator",
		Kind:         types.KindGasGenerator,
		PressureDrop: fuelPump.Outlet.Pressure - g.ggPressure,
		Inlet:        fuelPump.Outlet.WithMassFlow(ggFuel),
		Outlet:       ggIn,
	}
	perf.Components = make([]types.ComponentSummary, 0, 12)
	perf.Components = append(perf.Components,
		oxPump.Summary("ox_pump", oxIn),
		fuelPump.Summary("fuel_pump", fuelIn),
	)
	perf.Components = append(perf.Components, oxSums...)
	perf.Components = append(perf.Components, fuelSums...)
	perf.Components = append(perf.Components, ggSum, turb.Summary("turbine", ggIn))
	return perf, nil
}
