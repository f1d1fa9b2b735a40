package types

import "io"

// TraceStage 求解阶段
type TraceStage string

// 求解阶段常量
const (
	StageBound TraceStage = "bound" // 定义域端点
	StageScan  TraceStage = "scan"  // 括号扫描
	StageBrent TraceStage = "brent" // Brent 迭代
)

// TracePoint 一次残差求值记录
type TracePoint struct {
	Stage        TraceStage `json:"stage"`
	Evaluation   int        `json:"evaluation"` // 求值序号,从 1 开始
	Unknown      float64    `json:"unknown"`
	Residual     float64    `json:"residual"`
	PumpPower    float64    `json:"pump_power"`
	TurbinePower float64    `json:"turbine_power"`
}

// Debug 求解过程调试接口
type Debug interface {
	Init(cycle CycleType, lo, hi float64)
	IsDebug() bool
	SetDebug(is bool)
	Update(p TracePoint)
	Render(w io.Writer) error
	Error(err error)
}
