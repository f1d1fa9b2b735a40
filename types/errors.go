package types

import (
	"errors"
	"fmt"
)

// 错误分类标记,用于 errors.Is 判断
var (
	ErrInvalidParameter = errors.New("参数非物理")
	ErrUnsolvable       = errors.New("功率平衡无解")
	ErrNotConverged     = errors.New("功率平衡未收敛")
)

// InvalidParameterError 元件或设计点收到非物理参数。
// 在元件边界立即返回,不重试。
type InvalidParameterError struct {
	Component string  // 元件或模块名称
	Parameter string  // 参数名称
	Value     float64 // 参数值
	Reason    string  // 说明
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s: 参数 %s=%g 非法: %s", e.Component, e.Parameter, e.Value, e.Reason)
}

// Is 匹配 ErrInvalidParameter
func (e *InvalidParameterError) Is(target error) bool { return target == ErrInvalidParameter }

// NewInvalidParameter 创建参数错误
func NewInvalidParameter(component, parameter string, value float64, reason string) error {
	return &InvalidParameterError{Component: component, Parameter: parameter, Value: value, Reason: reason}
}

// PowerBalanceUnsolvable 在架构定义域内残差无变号
type PowerBalanceUnsolvable struct {
	Cycle      CycleType
	Lo, Hi     float64 // 扫描区间
	ResidualLo float64 // 区间端点残差 W
	ResidualHi float64
	Samples    int // 扫描求值次数
}

func (e *PowerBalanceUnsolvable) Error() string {
	return fmt.Sprintf("%s: %s在 [%g, %g] 内残差无变号 (%.6g W, %.6g W, 扫描 %d 点)",
		e.Cycle, ErrUnsolvable, e.Lo, e.Hi, e.ResidualLo, e.ResidualHi, e.Samples)
}

// Is 匹配 ErrUnsolvable
func (e *PowerBalanceUnsolvable) Is(target error) bool { return target == ErrUnsolvable }

// ConvergenceError 迭代次数耗尽仍未满足容差,携带最佳估计
type ConvergenceError struct {
	Cycle      CycleType
	Estimate   float64 // 未知量最佳估计
	Residual   float64 // 最佳估计处残差 W
	Tolerance  float64 // 功率容差 W
	Iterations int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: %s: %d 次迭代后 %s=%g 残差 %.6g W (容差 %.3g W)",
		e.Cycle, ErrNotConverged, e.Iterations, e.Cycle.UnknownName(), e.Estimate, e.Residual, e.Tolerance)
}

// Is 匹配 ErrNotConverged
func (e *ConvergenceError) Is(target error) bool { return target == ErrNotConverged }

// Infeasible 批量调用方视为不可行设计点的错误
func Infeasible(err error) bool {
	return errors.Is(err, ErrUnsolvable) || errors.Is(err, ErrNotConverged)
}
