package network

import (
	"turbocycle/combustion"
	"turbocycle/element"
	"turbocycle/fluid"
	"turbocycle/types"
)

// chamber 主燃烧室与喷管工况
type chamber struct {
	gas      combustion.Properties
	cstar    float64
	nozzle   combustion.Nozzle
	mdot     float64
	oxFlow   float64
	fuelFlow float64
}

// newChamber ṁ_c = F/(c*·CF),c* 未给定时取燃烧表
func newChamber(env Env, def types.Definition) (chamber, error) {
	gas, err := env.Combustion.Lookup(def.Oxidizer, def.Fuel, def.MixtureRatio)
	if err != nil {
		return chamber{}, err
	}
	cstar := def.CStar
	if cstar == 0 {
		cstar = gas.CStar
	}
	nz, err := combustion.NewNozzle(gas.Gamma, def.ExpansionRatio, def.ChamberPressure, def.AmbientPressure)
	if err != nil {
		return chamber{}, err
	}
	if !(nz.CF > 0) {
		return chamber{}, types.NewInvalidParameter("chamber", "ambient_pressure", def.AmbientPressure, "推力系数非正,喷管严重过膨胀")
	}
	mdot := def.Thrust / (cstar * nz.CF)
	return chamber{
		gas:      gas,
		cstar:    cstar,
		nozzle:   nz,
		mdot:     mdot,
		oxFlow:   mdot * def.MixtureRatio / (1 + def.MixtureRatio),
		fuelFlow: mdot / (1 + def.MixtureRatio),
	}, nil
}

func (c chamber) isp() float64 { return combustion.SpecificImpulse(c.cstar, c.nozzle.CF) }

// performance 填充与燃烧室相关的公共字段
func (c chamber) performance(def types.Definition) types.Performance {
	return types.Performance{
		Cycle:             def.Cycle,
		Oxidizer:          def.Oxidizer,
		Fuel:              def.Fuel,
		Thrust:            def.Thrust,
		ChamberPressure:   def.ChamberPressure,
		IspChamber:        c.isp(),
		CStar:             c.cstar,
		ThrustCoefficient: c.nozzle.CF,
		ChamberMassFlow:   c.mdot,
		MixtureRatio:      c.oxFlow / c.fuelFlow,
	}
}

// tankTemperature 未给定贮箱温度时取流体贮存温度
func tankTemperature(env Env, name string, t float64) (float64, error) {
	if t > 0 {
		return t, nil
	}
	return fluid.StorageTemperature(env.Fluids, name)
}

// lineDrop 以下游 (p, t) 处状态预估管路压降,压降可大于 p
func lineDrop(env Env, name string, p, t, mdot float64, line types.Line) (float64, error) {
	in, err := fluid.State(env.Fluids, name, p, t, mdot)
	if err != nil {
		return 0, err
	}
	r, err := element.PipeDrop(env.Fluids, in, line)
	if err != nil {
		return 0, err
	}
	return r.PressureDrop, nil
}

// leg 管路 → 阀门 → 喷注器 的一段供应路径
type leg struct {
	pipe     element.PipeResult
	valve    element.ValveResult
	injector element.ValveResult
}

// traceLeg 从 in 沿 管路 → 阀门 → 喷注器 追踪到燃烧室压力 pc
func traceLeg(env Env, prefix string, in types.FlowState, line types.Line, valveDP, pc float64) (leg, []types.ComponentSummary, error) {
	var l leg
	var err error
	if l.pipe, err = element.Pipe(env.Fluids, in, line); err != nil {
		return leg{}, nil, err
	}
	if l.valve, err = element.Valve(env.Fluids, l.pipe.Outlet, element.ValveSpec{DP: valveDP}); err != nil {
		return leg{}, nil, err
	}
	sums := []types.ComponentSummary{
		l.pipe.Summary(prefix+"_feed_line", in),
		l.valve.Summary(prefix+"_valve", l.pipe.Outlet),
	}
	inj, s, err := traceInjector(env, prefix, l.valve.Outlet, pc)
	if err != nil {
		return leg{}, nil, err
	}
	l.injector = inj
	return l, append(sums, s), nil
}

// traceInjector 喷注器按等焓节流到燃烧室压力
func traceInjector(env Env, prefix string, in types.FlowState, pc float64) (element.ValveResult, types.ComponentSummary, error) {
	dp := in.Pressure - pc
	if dp < 0 {
		return element.ValveResult{}, types.ComponentSummary{},
			types.NewInvalidParameter(prefix+"_injector", "inlet_pressure", in.Pressure, "低于燃烧室压力")
	}
	r, err := element.Valve(env.Fluids, in, element.ValveSpec{DP: dp})
	if err != nil {
		return element.ValveResult{}, types.ComponentSummary{}, err
	}
	s := r.Summary(prefix+"_injector", in)
	s.Kind = types.KindInjector
	return r, s, nil
}
