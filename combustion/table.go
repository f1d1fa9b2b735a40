package combustion

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/interp"

	"turbocycle/fluid"
	"turbocycle/types"
)

// Properties 燃烧产物性质
type Properties struct {
	Gamma              float64 `json:"gamma"`               // 比热比
	MolarMass          float64 `json:"molar_mass"`          // kg/mol
	ChamberTemperature float64 `json:"chamber_temperature"` // K
	CStar              float64 `json:"c_star"`              // m/s
}

// R 燃气气体常数 J/(kg·K)
func (p Properties) R() float64 { return types.RUniversal / p.MolarMass }

// Provider 燃烧性质查询接口
type Provider interface {
	Lookup(oxidizer, fuel string, mixtureRatio float64) (Properties, error)
}

// Point 表格中的一个混合比数据点
type Point struct {
	MixtureRatio float64
	Properties
}

// UnknownPairError 表中无此推进剂组合
type UnknownPairError struct{ Oxidizer, Fuel string }

func (e *UnknownPairError) Error() string {
	return fmt.Sprintf("无燃烧数据: %s/%s", e.Oxidizer, e.Fuel)
}

// Is 未知组合属于非法参数
func (e *UnknownPairError) Is(target error) bool { return target == types.ErrInvalidParameter }

type pairKey struct{ ox, fuel string }

// series 单一推进剂组合的分段线性插值
type series struct {
	lo, hi float64
	tc     interp.PiecewiseLinear
	gamma  interp.PiecewiseLinear
	molar  interp.PiecewiseLinear
	cstar  interp.PiecewiseLinear
}

func (s *series) at(mr float64) Properties {
	return Properties{
		Gamma:              s.gamma.Predict(mr),
		MolarMass:          s.molar.Predict(mr),
		ChamberTemperature: s.tc.Predict(mr),
		CStar:              s.cstar.Predict(mr),
	}
}

// Table 按混合比分段线性插值的燃烧表,表外取端点值。
// 推进剂名称经 Canonical 归一化后匹配。
type Table struct {
	pairs     map[pairKey]*series
	Canonical func(name string) string
}

// NewTable 创建空燃烧表,名称经内置流体库归一化
func NewTable() *Table {
	return &Table{pairs: map[pairKey]*series{}, Canonical: canonical}
}

func canonical(name string) string {
	if n, ok := fluid.Builtin().Canonical(name); ok {
		return n
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// Add 添加推进剂组合数据,点按混合比排序,至少需要两个点
func (t *Table) Add(oxidizer, fuel string, points ...Point) error {
	if len(points) < 2 {
		return fmt.Errorf("%s/%s: 至少需要两个数据点", oxidizer, fuel)
	}
	pts := append([]Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].MixtureRatio < pts[j].MixtureRatio })
	n := len(pts)
	mr := make([]float64, n)
	cols := [4][]float64{make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)}
	for i, p := range pts {
		if !(p.MixtureRatio > 0 && p.Gamma > 1 && p.MolarMass > 0 && p.ChamberTemperature > 0 && p.CStar > 0) {
			return fmt.Errorf("%s/%s: 混合比 %g 处数据非物理", oxidizer, fuel, p.MixtureRatio)
		}
		mr[i] = p.MixtureRatio
		cols[0][i] = p.ChamberTemperature
		cols[1][i] = p.Gamma
		cols[2][i] = p.MolarMass
		cols[3][i] = p.CStar
	}
	s := &series{lo: mr[0], hi: mr[n-1]}
	for i, pl := range []*interp.PiecewiseLinear{&s.tc, &s.gamma, &s.molar, &s.cstar} {
		if err := pl.Fit(mr, cols[i]); err != nil {
			return fmt.Errorf("%s/%s: %w", oxidizer, fuel, err)
		}
	}
	t.pairs[pairKey{t.Canonical(oxidizer), t.Canonical(fuel)}] = s
	return nil
}

// Lookup 实现 Provider
func (t *Table) Lookup(oxidizer, fuel string, mixtureRatio float64) (Properties, error) {
	if !(mixtureRatio > 0) {
		return Properties{}, types.NewInvalidParameter("combustion", "mixture_ratio", mixtureRatio, "必须为正")
	}
	s, ok := t.pairs[pairKey{t.Canonical(oxidizer), t.Canonical(fuel)}]
	if !ok {
		return Properties{}, &UnknownPairError{Oxidizer: oxidizer, Fuel: fuel}
	}
	return s.at(mixtureRatio), nil
}

// Range 推进剂组合表格覆盖的混合比范围
func (t *Table) Range(oxidizer, fuel string) (lo, hi float64, ok bool) {
	s, ok := t.pairs[pairKey{t.Canonical(oxidizer), t.Canonical(fuel)}]
	if !ok {
		return 0, 0, false
	}
	return s.lo, s.hi, true
}

// Pairs 已收录的推进剂组合
func (t *Table) Pairs() [][2]string {
	out := make([][2]string, 0, len(t.pairs))
	for k := range t.pairs {
		out = append(out, [2]string{k.ox, k.fuel})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

func pt(mr, tc, gamma, molar, cstar float64) Point {
	return Point{MixtureRatio: mr, Properties: Properties{
		Gamma: gamma, MolarMass: molar, ChamberTemperature: tc, CStar: cstar,
	}}
}

// builtin 内置燃烧表。
// 主燃烧室点为初步设计用代表值,富燃点对应燃气发生器工况,c* 由 sqrt(RT)/Γ 给出。
var builtin = func() *Table {
	t := NewTable()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(t.Add("n2o", "ethanol",
		pt(1.0, 1300, 1.20, 0.0240, 945),
		pt(3.0, 2800, 1.23, 0.0245, 1520),
		pt(4.0, 3100, 1.21, 0.0260, 1550),
		pt(5.0, 3200, 1.19, 0.0270, 1540),
	))
	must(t.Add("lox", "ethanol",
		pt(0.5, 1000, 1.15, 0.0220, 898),
		pt(1.5, 3200, 1.20, 0.0230, 1650),
		pt(2.0, 3400, 1.18, 0.0240, 1700),
	))
	must(t.Add("lox", "rp1",
		pt(0.30, 900, 1.12, 0.0220, 871),
		pt(0.40, 1060, 1.11, 0.0235, 922),
		pt(2.3, 3500, 1.22, 0.0230, 1750),
		pt(2.7, 3600, 1.20, 0.0235, 1780),
	))
	must(t.Add("lox", "methane",
		pt(0.30, 950, 1.15, 0.0190, 941),
		pt(0.40, 1150, 1.14, 0.0200, 1017),
		pt(3.0, 3400, 1.19, 0.0210, 1780),
		pt(3.5, 3550, 1.17, 0.0220, 1800),
	))
	must(t.Add("lox", "hydrogen",
		pt(0.8, 880, 1.38, 0.0042, 1649),
		pt(1.0, 1050, 1.37, 0.0050, 1661),
		pt(5.0, 3200, 1.25, 0.0120, 2300),
		pt(6.0, 3400, 1.22, 0.0130, 2350),
	))
	return t
}()

// Builtin 内置燃烧表
func Builtin() *Table { return builtin }
