package load

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turbocycle/batch"
	"turbocycle/types"
)

const bareJSON = `{
  "cycle": "gg",
  "oxidizer": "lox",
  "fuel": "rp1",
  "thrust": 10000,
  "chamber_pressure": 5e6,
  "mixture_ratio": 2.7,
  "c_star": 1780,
  "ox_feed": {"diameter": 0.03}
}`

const studyYAML = `
name: 压力扫描
definition:
  cycle: pressure-fed
  oxidizer: n2o
  fuel: ethanol
  thrust: 2000
  chamber_pressure: 2.0e6
  mixture_ratio: 4
sweep:
  parameter: chamber_pressure
  from: 1.5e6
  to: 2.5e6
  points: 3
  derived:
    ox_tank_pressure: "chamber_pressure * 1.4"
uq:
  samples: 32
  seed: 3
  parameters:
    - name: ox_pump_efficiency
      nominal: 0.7
      distribution: triangular
      lower: 0.6
      upper: 0.8
  outputs: [isp_delivered]
`

func TestDefinitionJSON(t *testing.T) {
	def, err := Definition(strings.NewReader(bareJSON), JSON)
	require.NoError(t, err)
	assert.Equal(t, types.CycleGasGenerator, def.Cycle)
	assert.Equal(t, 5e6, def.ChamberPressure)
	assert.Equal(t, 0.03, def.OxFeed.Diameter)
	// 默认值已填充
	assert.Equal(t, types.DefaultExpansionRatio, def.ExpansionRatio)
	assert.Equal(t, types.DefaultLineDiameter, def.FuelFeed.Diameter)
	assert.NoError(t, def.Validate())
}

func TestStudyYAML(t *testing.T) {
	st, err := Read(strings.NewReader(studyYAML), YAML)
	require.NoError(t, err)
	assert.Equal(t, "压力扫描", st.Name)
	require.NotNil(t, st.Definition)
	assert.Equal(t, types.CyclePressureFed, st.Definition.Cycle)
	require.NotNil(t, st.Sweep)
	assert.Equal(t, 3, st.Sweep.Points)
	assert.Equal(t, "chamber_pressure * 1.4", st.Sweep.Derived["ox_tank_pressure"])
	require.NotNil(t, st.UQ)
	require.Len(t, st.UQ.Parameters, 1)
	assert.Equal(t, batch.Triangular, st.UQ.Parameters[0].Distribution)
	assert.Equal(t, uint64(3), st.UQ.Seed)

	defs, err := st.Sweep.Definitions(*st.Definition)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.InDelta(t, 1.4*2.5e6, defs[2].OxTankPressure, 1e-6)
}

func TestStudyDefinitions(t *testing.T) {
	doc := `{"definitions": [` + bareJSON + `,` + bareJSON + `]}`
	st, err := Read(strings.NewReader(doc), JSON)
	require.NoError(t, err)
	assert.Nil(t, st.Definition)
	assert.Len(t, st.Points(), 2)

	_, err = Definition(strings.NewReader(doc), JSON)
	assert.Error(t, err, "多个设计点")
}

func TestSchemaRejects(t *testing.T) {
	cases := map[string]string{
		"未知架构": strings.Replace(bareJSON, `"gg"`, `"staged_combustion"`, 1),
		"效率越界": strings.Replace(bareJSON, `"c_star": 1780`, `"turbine_efficiency": 1.5`, 1),
		"推力为负": strings.Replace(bareJSON, `10000`, `-1`, 1),
		"缺少燃料": strings.Replace(bareJSON, `"fuel": "rp1",`, ``, 1),
		"未知字段": strings.Replace(bareJSON, `"thrust"`, `"warp": 9, "thrust"`, 1),
		"不是对象": `[1, 2]`,
		"空的研究": `{"name": "x"}`,
		"零扫描点": `{"definition": ` + bareJSON + `, "sweep": {"parameter": "thrust", "from": 1, "to": 2, "points": 0}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(doc), JSON)
			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.NotEmpty(t, se.Violations)
		})
	}
}

func TestSweepNeedsBase(t *testing.T) {
	doc := `{"definitions": [` + bareJSON + `], "sweep": {"parameter": "thrust", "from": 1, "to": 2, "points": 2}}`
	_, err := Read(strings.NewReader(doc), JSON)
	assert.Error(t, err)
}

func TestMalformed(t *testing.T) {
	_, err := Read(strings.NewReader(`{"cycle": `), JSON)
	assert.Error(t, err)
	_, err = Read(strings.NewReader("cycle: [unclosed"), YAML)
	assert.Error(t, err)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yml")
	require.NoError(t, os.WriteFile(path, []byte(studyYAML), 0o644))
	st, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, "压力扫描", st.Name)

	path = filepath.Join(dir, "gg.json")
	require.NoError(t, os.WriteFile(path, []byte(bareJSON), 0o644))
	st, err = File(path)
	require.NoError(t, err)
	assert.Equal(t, "gg", st.Name)

	_, err = File(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, YAML, FormatOf("a/b.YAML"))
	assert.Equal(t, YAML, FormatOf("b.yml"))
	assert.Equal(t, JSON, FormatOf("b.json"))
	assert.Equal(t, JSON, FormatOf("b"))
}
