package types

import (
	"fmt"
	"strings"
)

// CycleType 循环架构
type CycleType uint8

// 循环架构常量定义
const (
	CycleUnknown      CycleType = iota // 未知架构
	CyclePressureFed                   // 挤压式
	CycleGasGenerator                  // 燃气发生器
	CycleExpander                      // 膨胀循环
)

// cycleTypeString 架构名称映射
var cycleTypeString = map[CycleType]struct {
	Name    string // 文档名称
	Title   string // 显示名称
	Unknown string // 未知量名称
}{
	CycleUnknown:      {Name: "unknown", Title: "未知"},
	CyclePressureFed:  {Name: "pressure_fed", Title: "挤压式"},
	CycleGasGenerator: {Name: "gas_generator", Title: "燃气发生器循环", Unknown: "gg_fraction"},
	CycleExpander:     {Name: "expander", Title: "膨胀循环", Unknown: "discharge_pressure"},
}

var mapCycleName = map[string]CycleType{
	"pressure_fed":  CyclePressureFed,
	"pressure-fed":  CyclePressureFed,
	"gas_generator": CycleGasGenerator,
	"gas-generator": CycleGasGenerator,
	"gg":            CycleGasGenerator,
	"expander":      CycleExpander,
}

// CycleTypes 全部已知架构
func CycleTypes() []CycleType {
	return []CycleType{CyclePressureFed, CycleGasGenerator, CycleExpander}
}

// String 返回架构的字符串表示
func (t CycleType) String() string {
	if ct, ok := cycleTypeString[t]; ok {
		return ct.Name
	}
	return "unknown"
}

// Title 显示名称
func (t CycleType) Title() string {
	if ct, ok := cycleTypeString[t]; ok {
		return ct.Title
	}
	return cycleTypeString[CycleUnknown].Title
}

// UnknownName 隐式架构的未知量名称,挤压式为空
func (t CycleType) UnknownName() string { return cycleTypeString[t].Unknown }

// Implicit 是否需要求解功率平衡
func (t CycleType) Implicit() bool { return t == CycleGasGenerator || t == CycleExpander }

// Valid 是否为已知架构
func (t CycleType) Valid() bool {
	return t == CyclePressureFed || t == CycleGasGenerator || t == CycleExpander
}

// ParseCycleType 通过名称获取架构
func ParseCycleType(name string) (CycleType, error) {
	if t, ok := mapCycleName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t, nil
	}
	return CycleUnknown, fmt.Errorf("未知循环架构: %q", name)
}

// MarshalText 文本编码
func (t CycleType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("未知循环架构: %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText 文本解码
func (t *CycleType) UnmarshalText(text []byte) error {
	v, err := ParseCycleType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
