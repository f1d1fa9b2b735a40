package debug

import (
	"errors"
	"io"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"turbocycle/types"
)

// PNG 图尺寸
const (
	PlotWidth  = 8 * vg.Inch
	PlotHeight = 5 * vg.Inch
)

// Plot 将残差关于未知量的求值点按阶段绘制为 PNG
func (list *Record) Plot(w io.Writer) error {
	if len(list.Points) == 0 {
		return errors.New("没有求值记录")
	}
	p := plot.New()
	p.Title.Text = list.Cycle.String() + " power balance"
	p.X.Label.Text = list.Unknown
	p.Y.Label.Text = "residual [W]"
	p.Add(plotter.NewGrid())

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(zero)

	for i, stage := range []types.TraceStage{types.StageBound, types.StageScan, types.StageBrent} {
		pts := list.Stage(stage)
		if len(pts) == 0 {
			continue
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].Unknown < pts[j].Unknown })
		xy := make(plotter.XYs, len(pts))
		for k, pt := range pts {
			xy[k].X, xy[k].Y = pt.Unknown, pt.Residual
		}
		s, err := plotter.NewScatter(xy)
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(s)
		p.Legend.Add(string(stage), s)
		// 扫描点连线给出残差曲线形状
		if stage == types.StageScan {
			l, err := plotter.NewLine(xy)
			if err != nil {
				return err
			}
			l.Color = plotutil.Color(i)
			p.Add(l)
		}
	}

	wt, err := p.WriterTo(PlotWidth, PlotHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
