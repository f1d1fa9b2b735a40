package debug

import (
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	etypes "github.com/go-echarts/go-echarts/v2/types"

	"turbocycle/types"
)

// Charts 曲线绘制
type Charts struct {
	Record
}

func lineOpts(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Theme: etypes.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
		}),
		charts.WithAnimation(true),
	}
}

// Render 格式化
func (c *Charts) Render(w io.Writer) error {
	name := c.Unknown
	if name == "" {
		name = "unknown"
	}
	// 残差与未知量随求值次数变化
	lineR := charts.NewLine()
	lineR.SetGlobalOptions(lineOpts("残差曲线", fmt.Sprintf("%s 功率平衡残差随求值次数变化", c.Cycle.Title()))...)
	lineU := charts.NewLine()
	lineU.SetGlobalOptions(lineOpts("未知量曲线", fmt.Sprintf("%s 随求值次数变化", name))...)
	lineP := charts.NewLine()
	lineP.SetGlobalOptions(lineOpts("功率曲线", "泵功率与涡轮功率随求值次数变化")...)
	// 残差关于未知量的扫描曲线
	scan := charts.NewScatter()
	scan.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: etypes.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "残差分布",
			Subtitle: fmt.Sprintf("残差关于 %s, 定义域 [%g, %g]", name, c.Lo, c.Hi),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:  name,
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
		}),
	)
	// 处理数据
	{
		n := len(c.Points)
		index := make([]int, n)
		residual := make([]opts.LineData, n)
		unknown := make([]opts.LineData, n)
		pump := make([]opts.LineData, n)
		turbine := make([]opts.LineData, n)
		for i, p := range c.Points {
			index[i] = p.Evaluation
			residual[i] = opts.LineData{Value: p.Residual, Name: string(p.Stage)}
			unknown[i] = opts.LineData{Value: p.Unknown, Name: string(p.Stage)}
			pump[i] = opts.LineData{Value: p.PumpPower}
			turbine[i] = opts.LineData{Value: p.TurbinePower}
		}
		lineR.SetXAxis(index).AddSeries("残差 W", residual)
		lineU.SetXAxis(index).AddSeries(name, unknown)
		lineP.SetXAxis(index).
			AddSeries("泵功率 W", pump).
			AddSeries("涡轮功率 W", turbine)

		for _, stage := range []types.TraceStage{types.StageBound, types.StageScan, types.StageBrent} {
			pts := c.Stage(stage)
			sort.Slice(pts, func(i, j int) bool { return pts[i].Unknown < pts[j].Unknown })
			items := make([]opts.ScatterData, len(pts))
			for i, p := range pts {
				items[i] = opts.ScatterData{Value: []float64{p.Unknown, p.Residual}}
			}
			scan.AddSeries(string(stage), items)
		}
	}
	// 构建界面
	page := components.NewPage()
	page.AddCharts(
		lineR,
		lineU,
		lineP,
		scan,
	)
	return page.Render(w)
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	if err := c.Render(w); err != nil {
		c.Error(err)
	}
}
