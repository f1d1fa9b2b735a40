package maths

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrNoSignChange 网格扫描未发现变号
var ErrNoSignChange = errors.New("扫描区间内无变号")

// Bracket 含变号的子区间
type Bracket struct {
	Lo, Hi   float64
	FLo, FHi float64
}

// ScanError 扫描失败,携带区间端点残差
type ScanError struct {
	Bracket
	Samples int
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s: [%g, %g] f=%g..%g (%d 点)", ErrNoSignChange, e.Lo, e.Hi, e.FLo, e.FHi, e.Samples)
}

func (e *ScanError) Unwrap() error { return ErrNoSignChange }

// Grid 返回 [lo, hi] 上 n 段均匀网格的 n+1 个节点
func Grid(lo, hi float64, n int) []float64 {
	if n < 1 {
		n = 1
	}
	return floats.Span(make([]float64, n+1), lo, hi)
}

// Scan 在 [lo, hi] 上以 n 段均匀网格自 lo 起依次求值,
// 返回第一个变号子区间及求值次数。
// 节点残差恰为零时返回退化区间 [x, x]。
func Scan(f Func, lo, hi float64, n int) (Bracket, int, error) {
	grid := Grid(lo, hi, n)
	x0 := grid[0]
	f0, err := f(x0)
	if err != nil {
		return Bracket{}, 1, err
	}
	if f0 == 0 {
		return Bracket{Lo: x0, Hi: x0}, 1, nil
	}
	first := f0
	samples := 1
	for _, x := range grid[1:] {
		fx, err := f(x)
		samples++
		if err != nil {
			return Bracket{}, samples, err
		}
		if fx == 0 {
			return Bracket{Lo: x, Hi: x}, samples, nil
		}
		if !sameSign(f0, fx) {
			return Bracket{Lo: x0, Hi: x, FLo: f0, FHi: fx}, samples, nil
		}
		x0, f0 = x, fx
	}
	return Bracket{}, samples, &ScanError{
		Bracket: Bracket{Lo: grid[0], Hi: grid[len(grid)-1], FLo: first, FHi: f0},
		Samples: samples,
	}
}
