// Package debug 记录功率平衡求解过程并渲染。
package debug

import (
	"encoding/json"
	"io"

	"turbocycle/types"
)

// Record 记录一次求解的全部残差求值
type Record struct {
	Cycle   types.CycleType    `json:"cycle"`
	Unknown string             `json:"unknown"` // 未知量名称
	Lo      float64            `json:"lo"`
	Hi      float64            `json:"hi"`
	Points  []types.TracePoint `json:"points"`
	Errors  []string           `json:"errors,omitempty"`
}

// Init 初始化
func (list *Record) Init(cycle types.CycleType, lo, hi float64) {
	list.Cycle = cycle
	list.Unknown = cycle.UnknownName()
	list.Lo, list.Hi = lo, hi
	list.Points = list.Points[:0]
	list.Errors = nil
}

func (Record) IsDebug() bool    { return true }
func (Record) SetDebug(is bool) {}

// Render 格式和输出内容
func (list *Record) Render(w io.Writer) error { return json.NewEncoder(w).Encode(list) }

// Update 记录数据
func (list *Record) Update(p types.TracePoint) { list.Points = append(list.Points, p) }

// Error 记录求解错误,不输出日志
func (list *Record) Error(err error) { list.Errors = append(list.Errors, err.Error()) }

// Stage 指定阶段的求值点
func (list *Record) Stage(stage types.TraceStage) []types.TracePoint {
	var out []types.TracePoint
	for _, p := range list.Points {
		if p.Stage == stage {
			out = append(out, p)
		}
	}
	return out
}

// Last 最后一次求值
func (list *Record) Last() (types.TracePoint, bool) {
	if len(list.Points) == 0 {
		return types.TracePoint{}, false
	}
	return list.Points[len(list.Points)-1], true
}
