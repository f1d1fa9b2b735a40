package batch

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turbocycle/types"
)

func pressureFed() types.Definition {
	return types.Definition{
		Cycle: types.CyclePressureFed, Oxidizer: "n2o", Fuel: "ethanol",
		Thrust: 2000, ChamberPressure: 2e6, MixtureRatio: 4,
	}
}

func gasGenerator() types.Definition {
	return types.Definition{
		Cycle: types.CycleGasGenerator, Oxidizer: "lox", Fuel: "rp1",
		Thrust: 10e3, ChamberPressure: 5e6, MixtureRatio: 2.7, CStar: 1780,
	}
}

func TestRun(t *testing.T) {
	bad := pressureFed()
	bad.Thrust = -1
	unsolvable := gasGenerator()
	unsolvable.TurbineExhaustPressure = 4.4e6
	unsolvable.TurbineEfficiency = 0.05

	r := &Runner{Workers: 2}
	res, err := r.Run(context.Background(), []types.Definition{pressureFed(), bad, gasGenerator(), unsolvable})
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 4)
	assert.NotEmpty(t, res.ID)

	for i, o := range res.Outcomes {
		assert.Equal(t, i, o.Index)
	}
	assert.True(t, res.Outcomes[0].OK())
	assert.True(t, res.Outcomes[2].OK())
	assert.ErrorIs(t, res.Outcomes[1].Err, types.ErrInvalidParameter)
	assert.False(t, res.Outcomes[1].Infeasible)
	assert.ErrorIs(t, res.Outcomes[3].Err, types.ErrUnsolvable)
	assert.True(t, res.Outcomes[3].Infeasible)
	assert.NotEmpty(t, res.Outcomes[3].Error)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 1, res.Infeasible)
}

// TestResultJSON 含失败设计点的结果可以完整编码
func TestResultJSON(t *testing.T) {
	unsolvable := gasGenerator()
	unsolvable.TurbineExhaustPressure = 4.4e6
	unsolvable.TurbineEfficiency = 0.05
	res, err := (&Runner{Workers: 1}).Run(context.Background(), []types.Definition{pressureFed(), unsolvable})
	require.NoError(t, err)
	require.Equal(t, 1, res.Infeasible)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back.Outcomes, 2)
	require.NotNil(t, back.Outcomes[0].Performance)
	assert.Equal(t, types.CyclePressureFed, back.Outcomes[0].Performance.Cycle)
	assert.Nil(t, back.Outcomes[1].Performance)
	assert.True(t, back.Outcomes[1].Infeasible)
	assert.NotEmpty(t, back.Outcomes[1].Error)
}

func TestRunMatchesSerial(t *testing.T) {
	defs, err := Sweep{Parameter: "chamber_pressure", From: 4e6, To: 6e6, Points: 5}.Definitions(gasGenerator())
	require.NoError(t, err)
	res, err := (&Runner{Workers: 3}).Run(context.Background(), defs)
	require.NoError(t, err)
	serial, err := (&Runner{Workers: 1}).Run(context.Background(), defs)
	require.NoError(t, err)
	for i := range defs {
		require.True(t, res.Outcomes[i].OK(), "点 %d: %v", i, res.Outcomes[i].Err)
		assert.Equal(t, serial.Outcomes[i].Performance.GGFraction, res.Outcomes[i].Performance.GGFraction)
		assert.Equal(t, defs[i].ChamberPressure, res.Outcomes[i].Performance.ChamberPressure)
	}
}

func TestRunEmpty(t *testing.T) {
	_, err := (&Runner{}).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	defs := make([]types.Definition, 50)
	for i := range defs {
		defs[i] = pressureFed()
	}
	res, err := (&Runner{Workers: 2}).Run(ctx, defs)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, res.Outcomes, len(defs))
	for _, o := range res.Outcomes {
		if !o.OK() {
			assert.True(t, errors.Is(o.Err, context.Canceled))
		}
	}
}

func TestSweepDefinitions(t *testing.T) {
	base := pressureFed()
	base.OxFeed.Diameter = 0.02
	s := Sweep{
		Parameter: "chamber_pressure", From: 1e6, To: 3e6, Points: 5,
		Derived: map[string]string{
			"ox_tank_pressure":   "chamber_pressure * 1.5",
			"fuel_feed.diameter": "ox_feed.diameter * 2 + x * 0",
		},
	}
	assert.Equal(t, []float64{1e6, 1.5e6, 2e6, 2.5e6, 3e6}, s.Values())
	defs, err := s.Definitions(base)
	require.NoError(t, err)
	require.Len(t, defs, 5)
	for i, d := range defs {
		assert.InDelta(t, s.Values()[i], d.ChamberPressure, 1e-6)
		assert.InDelta(t, 1.5*d.ChamberPressure, d.OxTankPressure, 1e-6)
		assert.InDelta(t, 0.04, d.FuelFeed.Diameter, 1e-12)
	}
	// 原设计点不变
	assert.Equal(t, 2e6, base.ChamberPressure)

	one, err := Sweep{Parameter: "thrust", From: 500, To: 900, Points: 1}.Definitions(base)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, 500.0, one[0].Thrust)
}

func TestSweepErrors(t *testing.T) {
	base := pressureFed()
	_, err := Sweep{Parameter: "warp_factor", From: 1, To: 2, Points: 3}.Definitions(base)
	assert.Error(t, err)
	_, err = Sweep{Parameter: "thrust", From: 1, To: 2, Points: 0}.Definitions(base)
	assert.Error(t, err)
	_, err = Sweep{Parameter: "thrust", From: 1, To: 2, Points: 3,
		Derived: map[string]string{"warp_factor": "1"}}.Definitions(base)
	assert.Error(t, err)
	_, err = Sweep{Parameter: "thrust", From: 1, To: 2, Points: 3,
		Derived: map[string]string{"chamber_pressure": "thrust *"}}.Definitions(base)
	assert.Error(t, err)
}

func TestSweepRun(t *testing.T) {
	res, err := (&Runner{}).Sweep(context.Background(), pressureFed(),
		Sweep{Parameter: "mixture_ratio", From: 3, To: 4.5, Points: 4})
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 4)
	assert.Zero(t, res.Failed)
	for i, o := range res.Outcomes {
		assert.InDelta(t, 3+0.5*float64(i), o.Performance.MixtureRatio, 1e-9)
	}
}

func TestSample(t *testing.T) {
	mode := 0.9
	u := UQ{
		Samples: 2000, Seed: 42,
		Parameters: []Uncertain{
			{Name: "chamber_pressure", Nominal: 2e6, Std: 5e4},
			{Name: "turbine_efficiency", Distribution: Uniform, Lower: 0.5, Upper: 0.7},
			{Name: "ox_pump_efficiency", Distribution: Triangular, Lower: 0.6, Upper: 0.95, Mode: &mode},
			{Name: "thrust", Distribution: Lognormal, Nominal: 1000, Std: 100},
		},
	}
	a, err := u.Sample()
	require.NoError(t, err)
	b, err := u.Sample()
	require.NoError(t, err)
	assert.Equal(t, a, b, "同一种子应得到相同样本")

	for _, x := range a["turbine_efficiency"] {
		assert.True(t, x >= 0.5 && x <= 0.7)
	}
	for _, x := range a["ox_pump_efficiency"] {
		assert.True(t, x >= 0.6 && x <= 0.95)
	}
	st := NewStatistics("thrust", a["thrust"])
	assert.InEpsilon(t, 1000, st.Mean, 0.02)
	assert.InEpsilon(t, 100, st.Std, 0.1)
	assert.Greater(t, st.Min, 0.0)
	st = NewStatistics("chamber_pressure", a["chamber_pressure"])
	assert.InEpsilon(t, 2e6, st.Mean, 0.005)

	u.Seed = 43
	c, err := u.Sample()
	require.NoError(t, err)
	assert.NotEqual(t, a["thrust"], c["thrust"])
}

func TestSampleErrors(t *testing.T) {
	for _, p := range []Uncertain{
		{Name: "a", Std: -1},
		{Name: "a", Distribution: Uniform, Lower: 1, Upper: 1},
		{Name: "a", Distribution: Triangular, Nominal: 5, Lower: 0, Upper: 1},
		{Name: "a", Distribution: Lognormal, Nominal: 0, Std: 1},
		{Name: "a", Distribution: "cauchy"},
	} {
		_, err := UQ{Samples: 10, Parameters: []Uncertain{p}}.Sample()
		assert.Error(t, err, "%+v", p)
	}
	_, err := UQ{Samples: 10, Parameters: []Uncertain{{Name: "a"}, {Name: "a"}}}.Sample()
	assert.Error(t, err)
}

func TestStatistics(t *testing.T) {
	st := NewStatistics("x", []float64{5, 1, 4, 2, 3})
	assert.Equal(t, 5, st.N)
	assert.InDelta(t, 3, st.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), st.Std, 1e-12)
	assert.Equal(t, 1.0, st.Min)
	assert.Equal(t, 5.0, st.Max)
	assert.True(t, st.Median >= 2 && st.Median <= 4)
	assert.True(t, st.P05 <= st.P25 && st.P25 <= st.Median && st.Median <= st.P75 && st.P75 <= st.P95)
	assert.True(t, st.CI95Lower <= st.P05 && st.P95 <= st.CI95Upper)

	assert.Zero(t, NewStatistics("x", nil).N)
}

func TestSensitivity(t *testing.T) {
	n := 500
	x := make([]float64, n)
	y := make([]float64, n)
	z := make([]float64, n)
	for i := range x {
		x[i] = float64(i) / float64(n)
		y[i] = 3 * x[i]
		// 与 x 无关的交替序列
		z[i] = float64(i % 2)
	}
	assert.Greater(t, Sensitivity(x, y, 10), 0.95)
	assert.Less(t, Sensitivity(x, z, 10), 0.05)
	assert.Zero(t, Sensitivity(x[:5], y[:5], 10), "样本数少于分箱数")
}

func TestUQ(t *testing.T) {
	spec := UQ{
		Samples: 64, Seed: 7,
		Parameters: []Uncertain{{Name: "chamber_pressure", Nominal: 2e6, Std: 5e4, Unit: "Pa"}},
		Outputs:    []string{"isp_delivered", "ox_tank_pressure"},
	}
	res, err := (&Runner{Workers: 4}).UQ(context.Background(), pressureFed(), spec)
	require.NoError(t, err)
	assert.Equal(t, 64, res.Samples)
	assert.Zero(t, res.Failed)
	assert.Equal(t, 64, res.Statistics["isp_delivered"].N)
	tank := res.Statistics["ox_tank_pressure"]
	assert.Greater(t, tank.Mean, 2e6)
	assert.Greater(t, res.Correlation["chamber_pressure"]["ox_tank_pressure"], 0.99)
	assert.Greater(t, res.Sensitivity["chamber_pressure"]["ox_tank_pressure"], 0.8)
	require.Len(t, res.Outputs["isp_delivered"], 64)

	// 相同种子结果可复现
	again, err := (&Runner{Workers: 1}).UQ(context.Background(), pressureFed(), spec)
	require.NoError(t, err)
	assert.Equal(t, res.Statistics, again.Statistics)
}

func TestUQErrors(t *testing.T) {
	r := &Runner{}
	ctx := context.Background()
	_, err := r.UQ(ctx, pressureFed(), UQ{Outputs: []string{"isp_delivered"}})
	assert.Error(t, err)
	_, err = r.UQ(ctx, pressureFed(), UQ{
		Parameters: []Uncertain{{Name: "warp_factor", Nominal: 1}},
		Outputs:    []string{"isp_delivered"},
	})
	assert.Error(t, err)
	_, err = r.UQ(ctx, pressureFed(), UQ{
		Parameters: []Uncertain{{Name: "thrust", Nominal: 1000}},
		Outputs:    []string{"warp_speed"},
	})
	assert.Error(t, err)
}
