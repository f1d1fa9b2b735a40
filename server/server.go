// Package server 提供循环求解的 HTTP 接口。
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"turbocycle"
	"turbocycle/batch"
	"turbocycle/debug"
	"turbocycle/load"
	"turbocycle/types"
)

// MaxBodySize 请求体上限
const MaxBodySize = 1 << 20

// Server HTTP 服务
type Server struct {
	runner *batch.Runner
	solver *turbocycle.Solver
	log    *slog.Logger
}

// New 创建服务,求解器数值参数与物性源取自 runner
func New(runner *batch.Runner) *Server {
	if runner == nil {
		runner = &batch.Runner{}
	}
	log := runner.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{runner: runner, solver: turbocycle.New(solverOptions(runner)...), log: log}
}

func solverOptions(r *batch.Runner) []turbocycle.Option {
	opts := []turbocycle.Option{turbocycle.WithOptions(r.Options)}
	if r.Fluids != nil {
		opts = append(opts, turbocycle.WithFluids(r.Fluids))
	}
	if r.Combustion != nil {
		opts = append(opts, turbocycle.WithCombustion(r.Combustion))
	}
	return opts
}

// Router 路由表
func (s *Server) Router() *mux.Router {
	// 路由注册在根路由上,方法不匹配时返回 405
	r := mux.NewRouter()
	r.HandleFunc("/v1/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/v1/solve", s.solve).Methods(http.MethodPost)
	r.HandleFunc("/v1/compare", s.compare).Methods(http.MethodPost)
	r.HandleFunc("/v1/batch", s.batch).Methods(http.MethodPost)
	r.HandleFunc("/v1/charts", s.charts).Methods(http.MethodPost)
	return r
}

// Handler 带访问日志与异常恢复的处理器
func (s *Server) Handler() http.Handler {
	return handlers.LoggingHandler(os.Stdout, handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.Router()))
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	cycles := make([]string, 0, 3)
	for _, c := range types.CycleTypes() {
		cycles = append(cycles, c.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "cycles": cycles})
}

func (s *Server) solve(w http.ResponseWriter, r *http.Request) {
	def, err := readDefinition(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	p, err := s.solver.Solve(def)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// comparison 架构对比条目
type comparison struct {
	Cycle       types.CycleType    `json:"cycle"`
	Performance *types.Performance `json:"performance,omitempty"`
	Error       *apiError          `json:"error,omitempty"`
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	def, err := readDefinition(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	results := s.solver.Compare(def)
	out := struct {
		Results []comparison     `json:"results"`
		Best    *types.CycleType `json:"best,omitempty"`
	}{Results: make([]comparison, 0, len(results))}
	for _, c := range results {
		item := comparison{Cycle: c.Cycle}
		if c.Err != nil {
			_, e := classify(c.Err)
			item.Error = &e
		} else {
			item.Performance = &c.Performance
		}
		out.Results = append(out.Results, item)
	}
	if best, ok := turbocycle.Best(results); ok {
		out.Best = &best.Cycle
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) batch(w http.ResponseWriter, r *http.Request) {
	st, err := load.Read(http.MaxBytesReader(w, r.Body, MaxBodySize), load.JSON)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := struct {
		Name  string          `json:"name,omitempty"`
		Batch *batch.Result   `json:"batch,omitempty"`
		Sweep *batch.Result   `json:"sweep,omitempty"`
		UQ    *batch.UQResult `json:"uq,omitempty"`
	}{Name: st.Name}
	ctx := r.Context()
	if points := st.Points(); st.Sweep == nil && st.UQ == nil || len(st.Definitions) > 0 {
		res, err := s.runner.Run(ctx, points)
		if err != nil {
			s.fail(w, err)
			return
		}
		out.Batch = &res
	}
	if st.Sweep != nil {
		res, err := s.runner.Sweep(ctx, *st.Definition, *st.Sweep)
		if err != nil {
			s.fail(w, err)
			return
		}
		out.Sweep = &res
	}
	if st.UQ != nil {
		res, err := s.runner.UQ(ctx, *st.Definition, *st.UQ)
		if err != nil {
			s.fail(w, err)
			return
		}
		out.UQ = &res
	}
	writeJSON(w, http.StatusOK, out)
}

// charts 求解并返回迭代过程图表页面,求解失败时仍返回已记录的过程
func (s *Server) charts(w http.ResponseWriter, r *http.Request) {
	def, err := readDefinition(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	c := &debug.Charts{}
	solver := turbocycle.New(append(solverOptions(s.runner), turbocycle.WithTrace(c))...)
	if _, err := solver.Solve(def); err != nil {
		s.log.Info("图表求解失败", "cycle", def.Cycle, "err", err)
	}
	if len(c.Points) == 0 {
		s.fail(w, errors.New("没有可绘制的迭代记录"))
		return
	}
	c.Handler(w, r)
}

func readDefinition(r *http.Request) (types.Definition, error) {
	return load.Definition(io.LimitReader(r.Body, MaxBodySize), load.JSON)
}

// writeJSON 先完整编码再写状态行,编码失败时返回 500
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(struct {
			Error apiError `json:"error"`
		}{apiError{Kind: KindInternal, Message: err.Error()}})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
