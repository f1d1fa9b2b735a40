// Package load 读取设计点与研究文件。
//
// 文件可为 JSON 或 YAML,内容为单个设计点,或包含 definition/definitions/sweep/uq 的研究对象。
// 解码前先按内嵌的 JSON Schema 校验。
package load

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"turbocycle/batch"
	"turbocycle/types"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "turbocycle://schemas/study.json"

// Format 文件格式
type Format uint8

// 文件格式常量
const (
	JSON Format = iota
	YAML
)

// FormatOf 按扩展名判断格式,未知扩展名按 JSON 处理
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Study 研究文件
type Study struct {
	Name        string             `json:"name,omitempty"`
	Definition  *types.Definition  `json:"definition,omitempty"`
	Definitions []types.Definition `json:"definitions,omitempty"`
	Sweep       *batch.Sweep       `json:"sweep,omitempty"`
	UQ          *batch.UQ          `json:"uq,omitempty"`
}

// Points 研究中的全部设计点,Definition 在前
func (s Study) Points() []types.Definition {
	var out []types.Definition
	if s.Definition != nil {
		out = append(out, *s.Definition)
	}
	return append(out, s.Definitions...)
}

// SchemaError 文档不符合结构约束
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	if len(e.Violations) == 1 {
		return "文档校验失败: " + e.Violations[0]
	}
	return fmt.Sprintf("文档校验失败 (%d 处): %s", len(e.Violations), strings.Join(e.Violations, "; "))
}

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("解析内嵌模式: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("添加内嵌模式: %w", err)
	}
	return c.Compile(schemaURL)
})

// Read 读取并校验研究文档,设计点已填充默认值
func Read(r io.Reader, f Format) (Study, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Study{}, err
	}
	if f == YAML {
		if data, err = yamlToJSON(data); err != nil {
			return Study{}, err
		}
	}
	if err := validate(data); err != nil {
		return Study{}, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Study{}, err
	}
	var st Study
	if _, bare := probe["cycle"]; bare {
		var def types.Definition
		if err := json.Unmarshal(data, &def); err != nil {
			return Study{}, err
		}
		st.Definition = &def
	} else if err := json.Unmarshal(data, &st); err != nil {
		return Study{}, err
	}

	if st.Definition != nil {
		def := st.Definition.WithDefaults()
		st.Definition = &def
	}
	for i := range st.Definitions {
		st.Definitions[i] = st.Definitions[i].WithDefaults()
	}
	if (st.Sweep != nil || st.UQ != nil) && st.Definition == nil {
		return Study{}, errors.New("扫描与不确定性分析需要 definition 作为基准设计点")
	}
	return st, nil
}

// Definition 读取单个设计点
func Definition(r io.Reader, f Format) (types.Definition, error) {
	st, err := Read(r, f)
	if err != nil {
		return types.Definition{}, err
	}
	points := st.Points()
	if len(points) != 1 {
		return types.Definition{}, fmt.Errorf("文档包含 %d 个设计点,需要 1 个", len(points))
	}
	return points[0], nil
}

// File 按扩展名读取研究文件
func File(path string) (Study, error) {
	f, err := os.Open(path)
	if err != nil {
		return Study{}, err
	}
	defer f.Close()
	st, err := Read(f, FormatOf(path))
	if err != nil {
		return Study{}, fmt.Errorf("%s: %w", path, err)
	}
	if st.Name == "" {
		st.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return st, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("YAML 解析失败: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("YAML 转换失败: %w", err)
	}
	return out, nil
}

func validate(data []byte) error {
	sch, err := compiled()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("JSON 解析失败: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &SchemaError{Violations: violations(verr)}
		}
		return err
	}
	return nil
}

// violations 收集校验错误树的叶子
func violations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		return []string{fmt.Sprintf("/%s: %s", strings.Join(verr.InstanceLocation, "/"), verr.Error())}
	}
	var out []string
	for _, c := range verr.Causes {
		out = append(out, violations(c)...)
	}
	return out
}
