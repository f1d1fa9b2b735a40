package network

import (
	"turbocycle/fluid"
	"turbocycle/types"
)

// PressureFed 挤压式闭式求解:贮箱 → 管路 → 阀门 → 喷注器 → 燃烧室。
//
// 贮箱压力由燃烧室压力逐级叠加压降得到,定义中的贮箱压力不参与计算,
// 贮箱温度仍用于确定液体状态。
func PressureFed(env Env, def types.Definition) (types.Performance, error) {
	ch, err := newChamber(env, def)
	if err != nil {
		return types.Performance{}, err
	}
	pc, inj := def.ChamberPressure, def.InjectorDP()

	feed := func(prefix, name string, t, mdot, valveDP float64, line types.Line) (types.FlowState, leg, []types.ComponentSummary, error) {
		t, err := tankTemperature(env, name, t)
		if err != nil {
			return types.FlowState{}, leg{}, nil, err
		}
		pDown := pc + inj + valveDP
		dp, err := lineDrop(env, name, pDown, t, mdot, line)
		if err != nil {
			return types.FlowState{}, leg{}, nil, err
		}
		tank, err := fluid.State(env.Fluids, name, pDown+dp, t, mdot)
		if err != nil {
			return types.FlowState{}, leg{}, nil, err
		}
		l, sums, err := traceLeg(env, prefix, tank, line, valveDP, pc)
		return tank, l, sums, err
	}

	oxTank, oxLeg, oxSums, err := feed("ox", def.Oxidizer, def.OxTankTemperature, ch.oxFlow, def.OxValveDP, def.OxFeed)
	if err != nil {
		return types.Performance{}, err
	}
	fuelTank, fuelLeg, fuelSums, err := feed("fuel", def.Fuel, def.FuelTankTemperature, ch.fuelFlow, def.FuelValveDP, def.FuelFeed)
	if err != nil {
		return types.Performance{}, err
	}

	perf := ch.performance(def)
	perf.IspDelivered = def.Thrust / (ch.mdot * types.G0)
	perf.TotalMassFlow = ch.mdot
	perf.OxMassFlow = ch.oxFlow
	perf.FuelMassFlow = ch.fuelFlow
	perf.OverallMixtureRatio = perf.MixtureRatio
	perf.Converged = true
	perf.Budget = types.PressureBudget{
		ChamberPressure:       pc,
		InjectorDP:            inj,
		OxFeedDP:              oxLeg.pipe.PressureDrop,
		FuelFeedDP:            fuelLeg.pipe.PressureDrop,
		OxValveDP:             oxLeg.valve.PressureDrop,
		FuelValveDP:           fuelLeg.valve.PressureDrop,
		OxTankPressure:        oxTank.Pressure,
		FuelTankPressure:      fuelTank.Pressure,
		OxDischargePressure:   oxTank.Pressure,
		FuelDischargePressure: fuelTank.Pressure,
	}
	perf.Components = append(oxSums, fuelSums...)
	return perf, nil
}
