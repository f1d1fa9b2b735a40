package fluid

import (
	"fmt"
	"sort"
	"strings"

	"turbocycle/types"
)

// Properties 给定 (P, T) 下的流体物性
type Properties struct {
	Density   float64 // kg/m³
	Enthalpy  float64 // J/kg
	Entropy   float64 // J/(kg·K)
	Cp        float64 // J/(kg·K)
	Viscosity float64 // Pa·s
	Quality   float64 // 干度,单相为 -1
}

// Provider 物性查询接口,对相同 (name, P, T) 必须返回相同结果且无副作用
type Provider interface {
	Properties(name string, p, t float64) (Properties, error)
}

// Model 单一流体的物性模型
type Model interface {
	Properties(p, t float64) (Properties, error)
}

// Storer 可给出贮存温度的物性源
type Storer interface {
	StorageTemperature(name string) (float64, bool)
}

// UnknownError 未注册的流体
type UnknownError struct{ Name string }

func (e *UnknownError) Error() string { return fmt.Sprintf("未知流体: %q", e.Name) }

// Is 未知流体属于非法参数
func (e *UnknownError) Is(target error) bool { return target == types.ErrInvalidParameter }

// Library 按名称索引的物性模型集合
type Library struct {
	models  map[string]Model
	aliases map[string]string
}

// NewLibrary 创建空物性库
func NewLibrary() *Library {
	return &Library{models: map[string]Model{}, aliases: map[string]string{}}
}

func canonical(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Register 注册流体模型,名称或别名重复时 panic
func (l *Library) Register(name string, m Model, aliases ...string) {
	name = canonical(name)
	if _, ok := l.aliases[name]; ok {
		panic(fmt.Errorf("指定流体已经注册: %s", name))
	}
	l.models[name] = m
	l.aliases[name] = name
	for _, a := range aliases {
		a = canonical(a)
		if _, ok := l.aliases[a]; ok {
			panic(fmt.Errorf("指定流体别名已经注册: %s", a))
		}
		l.aliases[a] = name
	}
}

// Lookup 通过名称或别名取得模型
func (l *Library) Lookup(name string) (Model, error) {
	if n, ok := l.aliases[canonical(name)]; ok {
		return l.models[n], nil
	}
	return nil, &UnknownError{Name: name}
}

// Canonical 名称或别名对应的注册名
func (l *Library) Canonical(name string) (string, bool) {
	n, ok := l.aliases[canonical(name)]
	return n, ok
}

// Properties 实现 Provider
func (l *Library) Properties(name string, p, t float64) (Properties, error) {
	m, err := l.Lookup(name)
	if err != nil {
		return Properties{}, err
	}
	if !(p > 0) {
		return Properties{}, types.NewInvalidParameter(name, "pressure", p, "必须为正")
	}
	if !(t > 0) {
		return Properties{}, types.NewInvalidParameter(name, "temperature", t, "必须为正")
	}
	return m.Properties(p, t)
}

// StorageTemperature 实现 Storer
func (l *Library) StorageTemperature(name string) (float64, bool) {
	m, err := l.Lookup(name)
	if err != nil {
		return 0, false
	}
	if s, ok := m.(interface{ Storage() float64 }); ok {
		return s.Storage(), true
	}
	return 0, false
}

// Names 已注册流体名称(不含别名)
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.models))
	for k := range l.models {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// builtin 内置推进剂库,仅在 init 阶段注册,之后只读
var builtin = NewLibrary()

// Register 向内置库注册流体
func Register(name string, m Model, aliases ...string) { builtin.Register(name, m, aliases...) }

// Builtin 内置推进剂库
func Builtin() *Library { return builtin }

// StorageTemperature 查询贮存温度,物性源不支持时返回错误
func StorageTemperature(p Provider, name string) (float64, error) {
	if s, ok := p.(Storer); ok {
		if t, ok := s.StorageTemperature(name); ok {
			return t, nil
		}
	}
	return 0, types.NewInvalidParameter(name, "storage_temperature", 0, "物性源未提供贮存温度")
}

// overlay 在基础物性源上附加一个命名模型
type overlay struct {
	base  Provider
	name  string
	model Model
}

// Overlay 返回在 base 之上附加 name 对应模型的物性源,
// 用于燃气发生器燃气等仅在单次求解中存在的流体。
func Overlay(base Provider, name string, m Model) Provider {
	return &overlay{base: base, name: name, model: m}
}

func (o *overlay) Properties(name string, p, t float64) (Properties, error) {
	if name != o.name {
		return o.base.Properties(name, p, t)
	}
	if !(p > 0) {
		return Properties{}, types.NewInvalidParameter(name, "pressure", p, "必须为正")
	}
	if !(t > 0) {
		return Properties{}, types.NewInvalidParameter(name, "temperature", t, "必须为正")
	}
	return o.model.Properties(p, t)
}

func (o *overlay) StorageTemperature(name string) (float64, bool) {
	if s, ok := o.base.(Storer); ok && name != o.name {
		return s.StorageTemperature(name)
	}
	return 0, false
}
