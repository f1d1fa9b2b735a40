package maths

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon 双精度机器精度
const Epsilon = 0x1p-52

// 求根错误
var (
	ErrNotBracketed  = errors.New("区间端点残差同号")
	ErrMaxIterations = errors.New("超出最大迭代次数")
)

// Func 标量残差函数,求值失败时返回错误并立即终止求根
type Func func(x float64) (float64, error)

// Options 求根参数
type Options struct {
	XTol    float64                       // 未知量绝对容差
	FTol    float64                       // 残差绝对容差,|f| 不大于该值即收敛
	MaxIter int                           // 最大迭代次数
	Observe func(iter int, x, fx float64) // 每次迭代回调,可为空
}

func (opt Options) withDefaults() Options {
	if opt.MaxIter <= 0 {
		opt.MaxIter = 100
	}
	if opt.XTol < 0 {
		opt.XTol = 0
	}
	return opt
}

// Result 求根结果
type Result struct {
	Root        float64 // 根
	Residual    float64 // 根处残差
	Iterations  int     // 迭代次数
	Evaluations int     // 函数求值次数
}

// BracketError 区间未包含变号
type BracketError struct {
	Lo, Hi   float64
	FLo, FHi float64
}

func (e *BracketError) Error() string {
	return fmt.Sprintf("%s: f(%g)=%g, f(%g)=%g", ErrNotBracketed, e.Lo, e.FLo, e.Hi, e.FHi)
}

func (e *BracketError) Unwrap() error { return ErrNotBracketed }

// IterationError 迭代耗尽,携带最佳估计
type IterationError struct {
	Result
}

func (e *IterationError) Error() string {
	return fmt.Sprintf("%s: %d 次迭代后 x=%g f=%g", ErrMaxIterations, e.Iterations, e.Root, e.Residual)
}

func (e *IterationError) Unwrap() error { return ErrMaxIterations }

// Brent 在 [lo, hi] 上以 Brent 方法求 f 的零点。
//
//	要求 f(lo) 与 f(hi) 异号(或其一为零)。
//	收敛条件: |f(b)| <= FTol,或当前区间半宽不大于 2ε|b| + XTol/2。
func Brent(f Func, lo, hi float64, opt Options) (Result, error) {
	opt = opt.withDefaults()
	a, b := lo, hi
	fa, err := f(a)
	if err != nil {
		return Result{Evaluations: 1}, err
	}
	fb, err := f(b)
	if err != nil {
		return Result{Evaluations: 2}, err
	}
	res := Result{Evaluations: 2}
	switch {
	case math.Abs(fa) <= opt.FTol || fa == 0:
		res.Root, res.Residual = a, fa
		return res, nil
	case math.Abs(fb) <= opt.FTol || fb == 0:
		res.Root, res.Residual = b, fb
		return res, nil
	case sameSign(fa, fb):
		return res, &BracketError{Lo: lo, Hi: hi, FLo: fa, FHi: fb}
	}

	c, fc := b, fb
	var d, e float64
	for iter := 1; iter <= opt.MaxIter; iter++ {
		if sameSign(fb, fc) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		// b 始终为最佳估计
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		res.Iterations = iter
		res.Root, res.Residual = b, fb
		if opt.Observe != nil {
			opt.Observe(iter, b, fb)
		}
		tol1 := 2*Epsilon*math.Abs(b) + 0.5*opt.XTol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 || math.Abs(fb) <= opt.FTol {
			return res, nil
		}
		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			// 反二次插值或割线
			var p, q float64
			s := fb / fa
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xm*q - math.Abs(tol1*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			// 二分
			d = xm
			e = d
		}
		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		fb, err = f(b)
		res.Evaluations++
		if err != nil {
			return res, err
		}
	}
	return res, &IterationError{Result: res}
}

func sameSign(x, y float64) bool { return (x > 0 && y > 0) || (x < 0 && y < 0) }
