package turbocycle

import (
	"errors"
	"fmt"
	"math"

	"turbocycle/maths"
	"turbocycle/network"
	"turbocycle/types"
)

// Solve 求解设计点。
// 零值字段先填充默认值再校验,非物理参数在求根前返回。
func (s *Solver) Solve(def types.Definition) (types.Performance, error) {
	def = def.WithDefaults()
	if err := def.Validate(); err != nil {
		return types.Performance{}, s.fail(err)
	}
	env := network.Env{Fluids: s.fluids, Combustion: s.combustion}
	switch def.Cycle {
	case types.CyclePressureFed:
		p, err := network.PressureFed(env, def)
		if err != nil {
			return types.Performance{}, s.fail(fmt.Errorf("%s: %w", def.Cycle, err))
		}
		return p, nil
	case types.CycleGasGenerator, types.CycleExpander:
		ev, err := network.New(env, def)
		if err != nil {
			return types.Performance{}, s.fail(fmt.Errorf("%s: %w", def.Cycle, err))
		}
		return s.balance(ev)
	}
	return types.Performance{}, s.fail(types.NewInvalidParameter("solver", "cycle", float64(def.Cycle), "未知循环架构"))
}

// balance 闭合涡轮泵功率平衡。
//
// 端点残差异号时直接在整个定义域上 Brent 求根;
// 否则自下界起均匀扫描,取第一个变号子区间求根。
func (s *Solver) balance(ev network.Evaluator) (types.Performance, error) {
	cycle := ev.Cycle()
	lo, hi := ev.Bounds()
	if s.debugging() {
		s.trace.Init(cycle, lo, hi)
	}

	// 同一未知量只求值一次,扫描节点与 Brent 端点共享结果
	memo := make(map[float64]types.Performance)
	stage, evals := types.StageBound, 0
	at := func(u float64) (types.Performance, error) {
		if p, ok := memo[u]; ok {
			return p, nil
		}
		p, err := ev.Evaluate(u)
		if err != nil {
			return types.Performance{}, err
		}
		evals++
		memo[u] = p
		if s.debugging() {
			s.trace.Update(types.TracePoint{
				Stage: stage, Evaluation: evals, Unknown: u,
				Residual: p.Residual, PumpPower: p.PumpPower, TurbinePower: p.TurbinePower,
			})
		}
		return p, nil
	}
	f := func(u float64) (float64, error) {
		p, err := at(u)
		return p.Residual, err
	}

	pLo, err := at(lo)
	if err != nil {
		return types.Performance{}, s.fail(fmt.Errorf("%s: %s=%g: %w", cycle, cycle.UnknownName(), lo, err))
	}
	pHi, err := at(hi)
	if err != nil {
		return types.Performance{}, s.fail(fmt.Errorf("%s: %s=%g: %w", cycle, cycle.UnknownName(), hi, err))
	}
	tol := math.Max(s.opts.AbsTolerance, s.opts.RelTolerance*math.Abs(pLo.PumpPower))

	a, b := lo, hi
	if !bracketed(pLo.Residual, pHi.Residual, tol) {
		stage = types.StageScan
		br, n, err := maths.Scan(f, lo, hi, s.opts.ScanPoints)
		var se *maths.ScanError
		switch {
		case errors.As(err, &se):
			return types.Performance{}, s.fail(&types.PowerBalanceUnsolvable{
				Cycle: cycle, Lo: lo, Hi: hi,
				ResidualLo: se.FLo, ResidualHi: se.FHi, Samples: n,
			})
		case err != nil:
			return types.Performance{}, s.fail(fmt.Errorf("%s: 括号扫描: %w", cycle, err))
		}
		a, b = br.Lo, br.Hi
	}

	stage = types.StageBrent
	res, err := maths.Brent(f, a, b, maths.Options{
		XTol:    s.opts.UnknownTolerance * (hi - lo),
		FTol:    tol,
		MaxIter: s.opts.MaxIterations,
	})
	var ie *maths.IterationError
	switch {
	case errors.As(err, &ie):
		return types.Performance{}, s.fail(&types.ConvergenceError{
			Cycle: cycle, Estimate: ie.Root, Residual: ie.Residual,
			Tolerance: tol, Iterations: ie.Iterations,
		})
	case err != nil:
		return types.Performance{}, s.fail(fmt.Errorf("%s: 求根: %w", cycle, err))
	}

	p, err := at(res.Root)
	if err != nil {
		return types.Performance{}, s.fail(fmt.Errorf("%s: %s=%g: %w", cycle, cycle.UnknownName(), res.Root, err))
	}
	if math.Abs(p.Residual) > tol {
		return types.Performance{}, s.fail(&types.ConvergenceError{
			Cycle: cycle, Estimate: res.Root, Residual: p.Residual,
			Tolerance: tol, Iterations: res.Iterations,
		})
	}
	p.Tolerance = tol
	p.Iterations = res.Iterations
	p.Evaluations = evals
	p.Converged = true
	return p, nil
}

// bracketed 端点残差异号,或其一已满足容差
func bracketed(fa, fb, tol float64) bool {
	if math.Abs(fa) <= tol || math.Abs(fb) <= tol {
		return true
	}
	return (fa < 0) != (fb < 0)
}

func (s *Solver) debugging() bool { return s.trace != nil && s.trace.IsDebug() }

// fail 通知调试记录器后原样返回错误
func (s *Solver) fail(err error) error {
	if s.debugging() {
		s.trace.Error(err)
	}
	return err
}
