package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"turbocycle/types"
)

// Distribution 不确定参数的概率分布
type Distribution string

// 概率分布常量
const (
	Normal     Distribution = "normal"
	Uniform    Distribution = "uniform"
	Triangular Distribution = "triangular"
	Lognormal  Distribution = "lognormal"
)

// DefaultSamples 默认采样数
const DefaultSamples = 1000

// Uncertain 不确定输入参数。
// 正态与对数正态使用 Nominal、Std;均匀与三角分布使用 Lower、Upper,三角分布众数缺省为 Nominal。
type Uncertain struct {
	Name         string       `json:"name" yaml:"name"`
	Nominal      float64      `json:"nominal" yaml:"nominal"`
	Distribution Distribution `json:"distribution,omitempty" yaml:"distribution,omitempty"`
	Std          float64      `json:"std,omitempty" yaml:"std,omitempty"`
	Lower        float64      `json:"lower,omitempty" yaml:"lower,omitempty"`
	Upper        float64      `json:"upper,omitempty" yaml:"upper,omitempty"`
	Mode         *float64     `json:"mode,omitempty" yaml:"mode,omitempty"`
	Unit         string       `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// rander 按分布创建采样器
func (u Uncertain) rander(src rand.Source) (distuv.Rander, error) {
	switch u.Distribution {
	case Normal, "":
		if u.Std < 0 {
			return nil, fmt.Errorf("%s: 标准差不能为负", u.Name)
		}
		return distuv.Normal{Mu: u.Nominal, Sigma: u.Std, Src: src}, nil
	case Uniform:
		if !(u.Lower < u.Upper) {
			return nil, fmt.Errorf("%s: 均匀分布要求 lower < upper", u.Name)
		}
		return distuv.Uniform{Min: u.Lower, Max: u.Upper, Src: src}, nil
	case Triangular:
		mode := u.Nominal
		if u.Mode != nil {
			mode = *u.Mode
		}
		if !(u.Lower < u.Upper) || mode < u.Lower || mode > u.Upper {
			return nil, fmt.Errorf("%s: 三角分布要求 lower <= mode <= upper 且 lower < upper", u.Name)
		}
		return distuv.NewTriangle(u.Lower, u.Upper, mode, src), nil
	case Lognormal:
		if !(u.Nominal > 0) || u.Std < 0 {
			return nil, fmt.Errorf("%s: 对数正态分布要求均值为正", u.Name)
		}
		// 由均值与标准差换算对数空间参数
		s2 := math.Log(1 + (u.Std/u.Nominal)*(u.Std/u.Nominal))
		return distuv.LogNormal{Mu: math.Log(u.Nominal) - s2/2, Sigma: math.Sqrt(s2), Src: src}, nil
	}
	return nil, fmt.Errorf("%s: 未知分布 %q", u.Name, u.Distribution)
}

// UQ 蒙特卡洛不确定性分析配置
type UQ struct {
	Samples    int         `json:"samples,omitempty" yaml:"samples,omitempty"`
	Seed       uint64      `json:"seed,omitempty" yaml:"seed,omitempty"`
	Parameters []Uncertain `json:"parameters" yaml:"parameters"`
	Outputs    []string    `json:"outputs" yaml:"outputs"`
}

// Statistics 单个输出量的统计
type Statistics struct {
	Name      string  `json:"name"`
	N         int     `json:"n"`
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	Median    float64 `json:"median"`
	P05       float64 `json:"p05"`
	P25       float64 `json:"p25"`
	P75       float64 `json:"p75"`
	P95       float64 `json:"p95"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	CI95Lower float64 `json:"ci95_lower"`
	CI95Upper float64 `json:"ci95_upper"`
}

// NewStatistics 由有效样本计算统计量
func NewStatistics(name string, data []float64) Statistics {
	st := Statistics{Name: name, N: len(data)}
	if len(data) == 0 {
		return st
	}
	x := append([]float64(nil), data...)
	sort.Float64s(x)
	q := func(p float64) float64 { return stat.Quantile(p, stat.LinInterp, x, nil) }
	st.Mean = stat.Mean(x, nil)
	if len(x) > 1 {
		st.Std = stat.StdDev(x, nil)
	}
	st.Median = q(0.5)
	st.P05, st.P25, st.P75, st.P95 = q(0.05), q(0.25), q(0.75), q(0.95)
	st.Min, st.Max = x[0], x[len(x)-1]
	st.CI95Lower, st.CI95Upper = q(0.025), q(0.975)
	return st
}

// UQResult 不确定性分析结果
type UQResult struct {
	ID          string                        `json:"id"`
	Samples     int                           `json:"samples"`
	Failed      int                           `json:"failed"`
	Parameters  []Uncertain                   `json:"parameters"`
	Statistics  map[string]Statistics         `json:"statistics"`
	Sensitivity map[string]map[string]float64 `json:"sensitivity"` // 参数 -> 输出 -> 一阶敏感度
	Correlation map[string]map[string]float64 `json:"correlation"` // 参数 -> 输出 -> Pearson 相关系数
	Inputs      map[string][]float64          `json:"-"`
	Outputs     map[string][]float64          `json:"-"` // 失败样本为 NaN
}

// Sample 按配置生成输入样本,同一种子结果相同
func (u UQ) Sample() (map[string][]float64, error) {
	n := u.Samples
	if n <= 0 {
		n = DefaultSamples
	}
	src := rand.NewPCG(u.Seed, u.Seed^0x9e3779b97f4a7c15)
	out := make(map[string][]float64, len(u.Parameters))
	for _, p := range u.Parameters {
		if _, ok := out[p.Name]; ok {
			return nil, fmt.Errorf("重复的不确定参数: %q", p.Name)
		}
		r, err := p.rander(src)
		if err != nil {
			return nil, err
		}
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = r.Rand()
		}
		out[p.Name] = xs
	}
	return out, nil
}

// UQ 蒙特卡洛传播: 采样 → 并发求解 → 统计。
// 失败样本计入 Failed,不参与统计。
func (r *Runner) UQ(ctx context.Context, base types.Definition, spec UQ) (UQResult, error) {
	if len(spec.Parameters) == 0 || len(spec.Outputs) == 0 {
		return UQResult{}, errors.New("不确定性分析需要至少一个参数与一个输出量")
	}
	for _, p := range spec.Parameters {
		if _, ok := base.Get(p.Name); !ok {
			return UQResult{}, fmt.Errorf("未知不确定参数: %q", p.Name)
		}
	}
	for _, o := range spec.Outputs {
		if _, ok := (types.Performance{}).Metric(o); !ok {
			return UQResult{}, fmt.Errorf("未知输出量: %q", o)
		}
	}
	inputs, err := spec.Sample()
	if err != nil {
		return UQResult{}, err
	}
	n := len(inputs[spec.Parameters[0].Name])
	defs := make([]types.Definition, n)
	for i := range defs {
		def := base
		for _, p := range spec.Parameters {
			if def, err = def.With(p.Name, inputs[p.Name][i]); err != nil {
				return UQResult{}, err
			}
		}
		defs[i] = def
	}

	batch, err := r.Run(ctx, defs)
	if err != nil {
		return UQResult{}, err
	}
	res := UQResult{
		ID:          batch.ID,
		Samples:     n,
		Failed:      batch.Failed,
		Parameters:  spec.Parameters,
		Statistics:  make(map[string]Statistics, len(spec.Outputs)),
		Sensitivity: make(map[string]map[string]float64, len(spec.Parameters)),
		Correlation: make(map[string]map[string]float64, len(spec.Parameters)),
		Inputs:      inputs,
		Outputs:     make(map[string][]float64, len(spec.Outputs)),
	}
	for _, o := range spec.Outputs {
		ys := make([]float64, n)
		for i, oc := range batch.Outcomes {
			ys[i] = math.NaN()
			if oc.OK() {
				ys[i], _ = oc.Performance.Metric(o)
			}
		}
		res.Outputs[o] = ys
		res.Statistics[o] = NewStatistics(o, valid(ys))
	}
	for _, p := range spec.Parameters {
		sens := make(map[string]float64, len(spec.Outputs))
		corr := make(map[string]float64, len(spec.Outputs))
		for _, o := range spec.Outputs {
			x, y := paired(inputs[p.Name], res.Outputs[o])
			sens[o] = Sensitivity(x, y, max(10, n/50))
			corr[o] = 0
			if len(x) >= 3 {
				if c := stat.Correlation(x, y, nil); !math.IsNaN(c) {
					corr[o] = c
				}
			}
		}
		res.Sensitivity[p.Name] = sens
		res.Correlation[p.Name] = corr
	}
	return res, nil
}

func valid(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// paired 去掉输出为 NaN 的样本
func paired(x, y []float64) ([]float64, []float64) {
	px, py := make([]float64, 0, len(x)), make([]float64, 0, len(y))
	for i := range y {
		if !math.IsNaN(y[i]) {
			px, py = append(px, x[i]), append(py, y[i])
		}
	}
	return px, py
}

// Sensitivity 分箱估计一阶敏感度 Var(E[Y|X]) / Var(Y)
func Sensitivity(x, y []float64, bins int) float64 {
	if len(y) < bins || bins < 1 {
		return 0
	}
	_, total := stat.PopMeanVariance(y, nil)
	if total == 0 {
		return 0
	}
	lo, hi := floats.Min(x), floats.Max(x)
	sum := make([]float64, bins)
	cnt := make([]int, bins)
	for i, xi := range x {
		b := bins - 1
		if hi > lo {
			b = min(int((xi-lo)/(hi-lo)*float64(bins)), bins-1)
		}
		sum[b] += y[i]
		cnt[b]++
	}
	means := make([]float64, bins)
	weights := make([]float64, bins)
	for b := range means {
		if cnt[b] > 0 {
			means[b] = sum[b] / float64(cnt[b])
			weights[b] = float64(cnt[b])
		}
	}
	_, between := stat.PopMeanVariance(means, weights)
	return between / total
}
