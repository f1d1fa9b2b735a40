package maths

import (
	"errors"
	"math"
	"testing"
)

func poly(x float64) (float64, error) { return x*x - 2, nil }

// TestBrentSqrt2 验证二次函数求根
func TestBrentSqrt2(t *testing.T) {
	res, err := Brent(poly, 0, 2, Options{XTol: 1e-14, MaxIter: 100})
	if err != nil {
		t.Fatalf("求根失败: %v", err)
	}
	if math.Abs(res.Root-math.Sqrt2) > 1e-12 {
		t.Errorf("根错误: got %.15f, want %.15f", res.Root, math.Sqrt2)
	}
	if res.Iterations <= 0 || res.Iterations > 50 {
		t.Errorf("迭代次数异常: %d", res.Iterations)
	}
	if res.Evaluations != res.Iterations+1 {
		t.Errorf("求值次数 %d 与迭代次数 %d 不一致", res.Evaluations, res.Iterations)
	}
}

// TestBrentTranscendental 验证超越方程 cos(x) = x
func TestBrentTranscendental(t *testing.T) {
	f := func(x float64) (float64, error) { return math.Cos(x) - x, nil }
	res, err := Brent(f, 0, 1, Options{XTol: 1e-15})
	if err != nil {
		t.Fatalf("求根失败: %v", err)
	}
	const want = 0.7390851332151607
	if math.Abs(res.Root-want) > 1e-12 {
		t.Errorf("根错误: got %.16f, want %.16f", res.Root, want)
	}
	if math.Abs(res.Residual) > 1e-12 {
		t.Errorf("残差过大: %g", res.Residual)
	}
}

// TestBrentReversedBracket 下降函数与逆序区间
func TestBrentReversedBracket(t *testing.T) {
	f := func(x float64) (float64, error) { return 3 - x, nil }
	res, err := Brent(f, 10, 0, Options{XTol: 1e-12})
	if err != nil {
		t.Fatalf("求根失败: %v", err)
	}
	if math.Abs(res.Root-3) > 1e-10 {
		t.Errorf("根错误: got %g", res.Root)
	}
}

func TestBrentNotBracketed(t *testing.T) {
	_, err := Brent(poly, 2, 3, Options{})
	if !errors.Is(err, ErrNotBracketed) {
		t.Fatalf("期望 ErrNotBracketed, got %v", err)
	}
	var be *BracketError
	if !errors.As(err, &be) {
		t.Fatalf("期望 *BracketError, got %T", err)
	}
	if be.FLo != 2 || be.FHi != 7 {
		t.Errorf("端点残差错误: %g %g", be.FLo, be.FHi)
	}
}

// TestBrentEndpointRoot 端点即为根时不迭代
func TestBrentEndpointRoot(t *testing.T) {
	f := func(x float64) (float64, error) { return x - 1, nil }
	res, err := Brent(f, 1, 5, Options{})
	if err != nil {
		t.Fatalf("求根失败: %v", err)
	}
	if res.Root != 1 || res.Iterations != 0 {
		t.Errorf("got root=%g iter=%d", res.Root, res.Iterations)
	}
}

// TestBrentMaxIterations 迭代耗尽时返回最佳估计
func TestBrentMaxIterations(t *testing.T) {
	res, err := Brent(poly, 0, 2, Options{XTol: 1e-15, MaxIter: 2})
	if !errors.Is(err, ErrMaxIterations) {
		t.Fatalf("期望 ErrMaxIterations, got %v", err)
	}
	var ie *IterationError
	if !errors.As(err, &ie) {
		t.Fatalf("期望 *IterationError, got %T", err)
	}
	if ie.Iterations != 2 || res.Iterations != 2 {
		t.Errorf("迭代次数错误: %d", ie.Iterations)
	}
	if ie.Root <= 0 || ie.Root >= 2 {
		t.Errorf("最佳估计越界: %g", ie.Root)
	}
}

// TestBrentFTol 残差容差提前终止
func TestBrentFTol(t *testing.T) {
	loose, err := Brent(poly, 0, 2, Options{FTol: 1e-2})
	if err != nil {
		t.Fatalf("求根失败: %v", err)
	}
	tight, err := Brent(poly, 0, 2, Options{XTol: 1e-15})
	if err != nil {
		t.Fatalf("求根失败: %v", err)
	}
	if math.Abs(loose.Residual) > 1e-2 {
		t.Errorf("残差超出容差: %g", loose.Residual)
	}
	if loose.Iterations > tight.Iterations {
		t.Errorf("宽松容差迭代次数 %d 多于严格容差 %d", loose.Iterations, tight.Iterations)
	}
}

// TestBrentPropagatesError 求值错误立即返回
func TestBrentPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	f := func(x float64) (float64, error) {
		calls++
		if calls > 3 {
			return 0, boom
		}
		return x*x - 2, nil
	}
	_, err := Brent(f, 0, 2, Options{XTol: 1e-15})
	if !errors.Is(err, boom) {
		t.Fatalf("期望原始错误, got %v", err)
	}
	if calls != 4 {
		t.Errorf("出错后继续求值: %d", calls)
	}
}

func TestBrentObserve(t *testing.T) {
	var iters []int
	res, err := Brent(poly, 0, 2, Options{
		XTol:    1e-14,
		Observe: func(iter int, x, fx float64) { iters = append(iters, iter) },
	})
	if err != nil {
		t.Fatalf("求根失败: %v", err)
	}
	if len(iters) != res.Iterations {
		t.Fatalf("回调次数 %d != 迭代次数 %d", len(iters), res.Iterations)
	}
	for i, it := range iters {
		if it != i+1 {
			t.Errorf("回调序号错误: %v", iters)
			break
		}
	}
}

// TestBrentDeterministic 相同输入结果逐位一致
func TestBrentDeterministic(t *testing.T) {
	f := func(x float64) (float64, error) { return math.Exp(x) - 3*x, nil }
	a, _ := Brent(f, 0, 1, Options{XTol: 1e-14})
	b, _ := Brent(f, 0, 1, Options{XTol: 1e-14})
	if a != b {
		t.Errorf("结果不一致: %+v %+v", a, b)
	}
}
