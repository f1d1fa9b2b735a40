// Package batch 并发批量求解、参数扫描与蒙特卡洛不确定性分析。
//
// 每个工作协程持有独立的带缓存物性源,求解之间不共享可变状态。
// 上下文取消只停止调度新的设计点,进行中的求解不会被中断。
package batch

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"turbocycle"
	"turbocycle/combustion"
	"turbocycle/fluid"
	"turbocycle/types"
)

// Outcome 单个设计点的求解结果
type Outcome struct {
	Index       int                `json:"index"`
	ID          string             `json:"id"`
	Definition  types.Definition   `json:"definition"`
	Performance *types.Performance `json:"performance,omitempty"` // 仅成功时非空
	Err         error              `json:"-"`
	Error       string             `json:"error,omitempty"`
	Infeasible  bool               `json:"infeasible"` // 功率平衡无解或未收敛
}

// OK 是否成功求解
func (o Outcome) OK() bool { return o.Err == nil }

// Result 一次批量运行的结果,顺序与输入一致
type Result struct {
	ID         string        `json:"id"`
	Started    time.Time     `json:"started"`
	Elapsed    time.Duration `json:"elapsed"`
	Outcomes   []Outcome     `json:"outcomes"`
	Failed     int           `json:"failed"`
	Infeasible int           `json:"infeasible"`
}

// Runner 批量求解器,零值可用
type Runner struct {
	Workers    int                 // 工作协程数,0 为 CPU 数
	CacheSize  int                 // 每个工作协程的物性缓存容量,0 为默认值
	Options    turbocycle.Options  // 求解器数值参数
	Fluids     fluid.Provider      // 基础流体物性源,为空时使用内置库
	Combustion combustion.Provider // 为空时使用内置表
	Logger     *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) workers(n int) int {
	w := r.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	return max(min(w, n), 1)
}

// solver 为工作协程创建独立的求解器
func (r *Runner) solver() (*turbocycle.Solver, error) {
	base := r.Fluids
	if base == nil {
		base = fluid.Builtin()
	}
	size := r.CacheSize
	if size <= 0 {
		size = fluid.DefaultCacheSize
	}
	cached, err := fluid.NewCached(base, size)
	if err != nil {
		return nil, err
	}
	opts := []turbocycle.Option{turbocycle.WithFluids(cached), turbocycle.WithOptions(r.Options)}
	if r.Combustion != nil {
		opts = append(opts, turbocycle.WithCombustion(r.Combustion))
	}
	return turbocycle.New(opts...), nil
}

// Run 并发求解全部设计点。
// 单个设计点失败记录在对应 Outcome 中,不中断批量运行;
// 仅在上下文取消时返回错误,未调度的设计点记录取消原因。
func (r *Runner) Run(ctx context.Context, defs []types.Definition) (Result, error) {
	res := Result{ID: uuid.NewString(), Started: time.Now(), Outcomes: make([]Outcome, len(defs))}
	if len(defs) == 0 {
		return res, ErrEmpty
	}
	log := r.logger().With("run", res.ID)
	log.Info("批量求解开始", "points", len(defs), "workers", r.workers(len(defs)))

	solvers := make([]*turbocycle.Solver, r.workers(len(defs)))
	for k := range solvers {
		s, err := r.solver()
		if err != nil {
			return res, err
		}
		solvers[k] = s
	}

	jobs := make(chan int)
	done := make([]bool, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(solvers))
	for _, s := range solvers {
		g.Go(func() error {
			for i := range jobs {
				o := Outcome{Index: i, ID: uuid.NewString(), Definition: defs[i]}
				p, err := s.Solve(defs[i])
				if err == nil {
					o.Performance = &p
				} else {
					o.Err = err
					o.Error = o.Err.Error()
					o.Infeasible = types.Infeasible(o.Err)
					log.Debug("设计点求解失败", "index", i, "infeasible", o.Infeasible, "err", o.Err)
				}
				res.Outcomes[i] = o
				done[i] = true
			}
			return nil
		})
	}

feed:
	for i := range defs {
		select {
		case jobs <- i:
		case <-gctx.Done():
			break feed
		}
	}
	close(jobs)
	_ = g.Wait()

	for i, ok := range done {
		if !ok {
			res.Outcomes[i] = Outcome{Index: i, Definition: defs[i], Err: ctx.Err(), Error: errString(ctx.Err())}
		}
	}
	for _, o := range res.Outcomes {
		if o.Err != nil {
			res.Failed++
		}
		if o.Infeasible {
			res.Infeasible++
		}
	}
	res.Elapsed = time.Since(res.Started)
	log.Info("批量求解结束", "failed", res.Failed, "infeasible", res.Infeasible, "elapsed", res.Elapsed)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ErrEmpty 没有可求解的设计点
var ErrEmpty = errors.New("没有设计点")
