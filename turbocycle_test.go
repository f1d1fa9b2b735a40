package turbocycle

import (
	"errors"
	"io"
	"math"
	"testing"

	"turbocycle/combustion"
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

func expander() types.Definition {
	return types.Definition{
		Cycle: types.CycleExpander, Oxidizer: "lox", Fuel: "methane",
		Thrust: 30e3, ChamberPressure: 3e6, MixtureRatio: 3.3,
	}
}

// tracer 记录调试回调次数
type tracer struct {
	inits, updates, errs int
	points               []types.TracePoint
}

func (r *tracer) Init(types.CycleType, float64, float64) { r.inits++ }
func (r *tracer) IsDebug() bool { return true }
func (r *tracer) SetDebug(bool) {}
func (r *tracer) Update(p types.TracePoint) { r.updates++; r.points = append(r.points, p) }
func (r *tracer) Render(io.Writer) error { return nil }
func (r *tracer) Error(error) { r.errs++ }

func TestPressureFed(t *testing.T) {
	p, err := Solve(pressureFed())
	if err != nil {
		t.Fatal(err)
	}
	if p.PumpPower != 0 || !p.Converged {
		t.Errorf("挤压式: 泵功率 %g 收敛 %v", p.PumpPower, p.Converged)
	}
	gas, err := combustion.Builtin().Lookup("n2o", "ethanol", 4)
	if err != nil {
		t.Fatal(err)
	}
	nz, err := combustion.NewNozzle(gas.Gamma, types.DefaultExpansionRatio, 2e6, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := combustion.SpecificImpulse(gas.CStar, nz.CF)
	if math.Abs(p.IspDelivered-want)/want > 0.01 {
		t.Errorf("比冲 %g 偏离 %g 超过 1%%", p.IspDelivered, want)
	}
	if !(p.Budget.OxTankPressure > 2e6 && p.Budget.FuelTankPressure > 2e6) {
		t.Errorf("贮箱压力应高于燃烧室压力: %+v", p.Budget)
	}
}

func TestGasGenerator(t *testing.T) {
	p, err := Solve(gasGenerator())
	if err != nil {
		t.Fatal(err)
	}
	if !(p.GGFraction > 0 && p.GGFraction < 1) {
		t.Errorf("燃气发生器流量比 %g", p.GGFraction)
	}
	if !p.Converged || math.Abs(p.Residual) > p.Tolerance {
		t.Errorf("未满足功率平衡: 残差 %g 容差 %g", p.Residual, p.Tolerance)
	}
	if !(p.PumpPower > 0 && p.TurbinePower > 0) {
		t.Errorf("泵 %g 涡轮 %g", p.PumpPower, p.TurbinePower)
	}
	if !(p.IspDelivered < p.IspChamber) {
		t.Errorf("开式循环系统比冲 %g 应低于燃烧室比冲 %g", p.IspDelivered, p.IspChamber)
	}
	if p.Evaluations < p.Iterations || p.Iterations == 0 {
		t.Errorf("迭代 %d 求值 %d", p.Iterations, p.Evaluations)
	}
}

// TestPowerBalanceClosure 收敛解处涡轮功率与各泵功率之和相差不超过容差
func TestPowerBalanceClosure(t *testing.T) {
	for _, def := range []types.Definition{gasGenerator(), expander()} {
		p, err := Solve(def)
		if err != nil {
			t.Fatalf("%s: %v", def.Cycle, err)
		}
		var pumps float64
		for _, c := range p.Components {
			if c.Kind == types.KindPump {
				pumps += c.Power
			}
		}
		if math.Abs(pumps-p.PumpPower) > 1e-9*pumps {
			t.Errorf("%s: 元件泵功率 %g != %g", def.Cycle, pumps, p.PumpPower)
		}
		if math.Abs(p.TurbinePower-pumps) > p.Tolerance {
			t.Errorf("%s: |%g - %g| > %g", def.Cycle, p.TurbinePower, pumps, p.Tolerance)
		}
	}
}

func TestGasGeneratorUnsolvable(t *testing.T) {
	def := gasGenerator()
	def.TurbineExhaustPressure = 4.4e6
	def.TurbineEfficiency = 0.05
	_, err := Solve(def)
	if !errors.Is(err, types.ErrUnsolvable) {
		t.Fatalf("应无解, got %v", err)
	}
	var ue *types.PowerBalanceUnsolvable
	if !errors.As(err, &ue) {
		t.Fatalf("错误类型 %T", err)
	}
	if ue.Cycle != types.CycleGasGenerator || !(ue.ResidualLo < 0 && ue.ResidualHi < 0) {
		t.Errorf("端点残差应同为负: %+v", ue)
	}
	if ue.Samples != types.ScanPoints+1 {
		t.Errorf("扫描点数 %d", ue.Samples)
	}
	if !types.Infeasible(err) {
		t.Errorf("无解应视为不可行")
	}
}

func TestExpander(t *testing.T) {
	def := expander()
	p, err := Solve(def)
	if err != nil {
		t.Fatal(err)
	}
	lo := def.ChamberPressure * (1 + types.DefaultInjectorDPFraction)
	if !(p.DischargePressure > lo && p.DischargePressure < types.DefaultMaxDischargeRatio*def.ChamberPressure) {
		t.Errorf("泵出口压力 %g 超出定义域", p.DischargePressure)
	}
	if !p.Converged || math.Abs(p.Residual) > p.Tolerance {
		t.Errorf("残差 %g 容差 %g", p.Residual, p.Tolerance)
	}
	if !(p.HeatDuty > 0) || p.GGFraction != 0 {
		t.Errorf("换热量 %g 燃气发生器 %g", p.HeatDuty, p.GGFraction)
	}
	if p.Unknown() != p.DischargePressure {
		t.Errorf("未知量 %g", p.Unknown())
	}
}

// TestInvalidEffectiveness 换热效能大于 1 在求根前即返回参数错误
func TestInvalidEffectiveness(t *testing.T) {
	def := expander()
	def.HXEffectiveness = 1.2
	tr := &tracer{}
	_, err := New(WithTrace(tr)).Solve(def)
	var pe *types.InvalidParameterError
	if !errors.As(err, &pe) || pe.Parameter != "hx_effectiveness" {
		t.Fatalf("应为 hx_effectiveness 参数错误, got %v", err)
	}
	if tr.inits != 0 || tr.updates != 0 {
		t.Errorf("求根前应已返回: init %d update %d", tr.inits, tr.updates)
	}
	if tr.errs != 1 {
		t.Errorf("错误回调 %d 次", tr.errs)
	}
}

func TestInvalidDefinition(t *testing.T) {
	for _, mod := range []func(*types.Definition){
		func(d *types.Definition) { d.Thrust = -1 },
		func(d *types.Definition) { d.ChamberPressure = 0 },
		func(d *types.Definition) { d.TurbineEfficiency = 1.5 },
		func(d *types.Definition) { d.Cycle = types.CycleUnknown },
		func(d *types.Definition) { d.Fuel = "unobtainium" },
	} {
		def := gasGenerator()
		mod(&def)
		if _, err := Solve(def); !errors.Is(err, types.ErrInvalidParameter) {
			t.Errorf("%+v: 应为参数错误, got %v", def, err)
		}
	}
}

func TestDeterministic(t *testing.T) {
	for _, def := range []types.Definition{pressureFed(), gasGenerator(), expander()} {
		a, err := Solve(def)
		if err != nil {
			t.Fatal(err)
		}
		b, err := New().Solve(def)
		if err != nil {
			t.Fatal(err)
		}
		if a.Unknown() != b.Unknown() || a.IspDelivered != b.IspDelivered || a.Iterations != b.Iterations {
			t.Errorf("%s: 结果不确定 %g/%g", def.Cycle, a.Unknown(), b.Unknown())
		}
	}
}

func TestTrace(t *testing.T) {
	tr := &tracer{}
	p, err := New(WithTrace(tr)).Solve(gasGenerator())
	if err != nil {
		t.Fatal(err)
	}
	if tr.inits != 1 || tr.errs != 0 {
		t.Errorf("init %d err %d", tr.inits, tr.errs)
	}
	if tr.updates != p.Evaluations {
		t.Errorf("记录 %d 次,求值 %d 次", tr.updates, p.Evaluations)
	}
	if tr.points[0].Stage != types.StageBound || tr.points[len(tr.points)-1].Stage != types.StageBrent {
		t.Errorf("阶段顺序错误: %v ... %v", tr.points[0].Stage, tr.points[len(tr.points)-1].Stage)
	}
	for i, pt := range tr.points {
		if pt.Evaluation != i+1 {
			t.Fatalf("求值序号 %d != %d", pt.Evaluation, i+1)
		}
	}
}

// TestMaxIterations 迭代次数不足时携带最佳估计返回未收敛错误
func TestMaxIterations(t *testing.T) {
	s := New(WithOptions(Options{MaxIterations: 1, RelTolerance: 1e-15, AbsTolerance: 1e-12}))
	_, err := s.Solve(gasGenerator())
	var ce *types.ConvergenceError
	if !errors.As(err, &ce) {
		t.Fatalf("应为未收敛错误, got %v", err)
	}
	if !(ce.Estimate > 0 && ce.Estimate < 1) || ce.Iterations != 1 {
		t.Errorf("最佳估计 %+v", ce)
	}
	if !types.Infeasible(err) {
		t.Errorf("未收敛应视为不可行")
	}
}

func TestCompare(t *testing.T) {
	def := gasGenerator()
	def.Fuel = "methane"
	def.CStar = 0
	def.MixtureRatio = 3.3
	res := Compare(def)
	if len(res) != len(types.CycleTypes()) {
		t.Fatalf("结果数 %d", len(res))
	}
	for i, r := range res {
		if r.Cycle != types.CycleTypes()[i] {
			t.Errorf("顺序错误: %s", r.Cycle)
		}
		if r.Err != nil {
			t.Errorf("%s: %v", r.Cycle, r.Err)
		}
	}
	best, ok := Best(res)
	if !ok {
		t.Fatal("无收敛结果")
	}
	for _, r := range res {
		if r.Performance.IspDelivered > best.Performance.IspDelivered {
			t.Errorf("%s 比冲更高", r.Cycle)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{ScanPoints: 8}.withDefaults()
	if o.ScanPoints != 8 || o.MaxIterations != types.MaxIterations || o.RelTolerance != types.RelPowerTolerance {
		t.Errorf("默认值填充错误: %+v", o)
	}
	if New(WithOptions(Options{})).Options() != DefaultOptions() {
		t.Errorf("零值参数应等于默认参数")
	}
}
