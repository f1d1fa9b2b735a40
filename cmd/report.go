package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"turbocycle"
	"turbocycle/batch"
	"turbocycle/load"
	"turbocycle/types"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printPerformance(w io.Writer, p types.Performance) {
	fmt.Fprintf(w, "%s  %s/%s  F=%.0f N  Pc=%.3f MPa  MR=%.2f\n",
		p.Cycle.Title(), p.Oxidizer, p.Fuel, p.Thrust, p.ChamberPressure/1e6, p.MixtureRatio)
	fmt.Fprintf(w, "Isp=%.1f s (燃烧室 %.1f s)  c*=%.0f m/s  CF=%.3f  总流量=%.3f kg/s\n",
		p.IspDelivered, p.IspChamber, p.CStar, p.ThrustCoefficient, p.TotalMassFlow)
	if p.Cycle.Implicit() {
		fmt.Fprintf(w, "%s=%.6g  泵功率=%.1f kW  涡轮功率=%.1f kW  残差=%.3g W  迭代=%d  求值=%d\n",
			p.Cycle.UnknownName(), p.Unknown(), p.PumpPower/1e3, p.TurbinePower/1e3,
			p.Residual, p.Iterations, p.Evaluations)
	}
	tw := table(w)
	fmt.Fprintln(tw, "元件\t类别\t入口 P [MPa]\t入口 T [K]\t出口 P [MPa]\t出口 T [K]\t流量 [kg/s]\t功率 [kW]")
	for _, c := range p.Components {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.1f\t%.3f\t%.1f\t%.3f\t%.2f\n",
			c.Name, c.Kind, c.Inlet.Pressure/1e6, c.Inlet.Temperature,
			c.Outlet.Pressure/1e6, c.Outlet.Temperature, c.Inlet.MassFlow, c.Power/1e3)
	}
	tw.Flush()
	fmt.Fprintf(w, "贮箱压力: 氧化剂 %.3f MPa  燃料 %.3f MPa\n\n",
		p.Budget.OxTankPressure/1e6, p.Budget.FuelTankPressure/1e6)
}

// comparison 架构对比的 JSON 形式
type comparison struct {
	Cycle       types.CycleType    `json:"cycle"`
	Performance *types.Performance `json:"performance,omitempty"`
	Error       string             `json:"error,omitempty"`
}

func comparisons(results []turbocycle.Comparison) []comparison {
	out := make([]comparison, 0, len(results))
	for _, r := range results {
		c := comparison{Cycle: r.Cycle}
		if r.Err != nil {
			c.Error = r.Err.Error()
		} else {
			c.Performance = &r.Performance
		}
		out = append(out, c)
	}
	return out
}

func printComparison(w io.Writer, results []turbocycle.Comparison) {
	best, ok := turbocycle.Best(results)
	tw := table(w)
	fmt.Fprintln(tw, "架构\tIsp [s]\t总流量 [kg/s]\t泵功率 [kW]\t未知量\t状态")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t%s\n", r.Cycle.Title(), kind(r.Err))
			continue
		}
		mark := ""
		if ok && r.Cycle == best.Cycle {
			mark = " *"
		}
		p := r.Performance
		fmt.Fprintf(tw, "%s\t%.1f\t%.3f\t%.1f\t%.6g\t收敛%s\n",
			r.Cycle.Title(), p.IspDelivered, p.TotalMassFlow, p.PumpPower/1e3, p.Unknown(), mark)
	}
	tw.Flush()
}

func printSweep(w io.Writer, parameter string, res batch.Result) {
	tw := table(w)
	fmt.Fprintf(tw, "%s\tIsp [s]\t泵功率 [kW]\t未知量\t状态\n", parameter)
	for _, o := range res.Outcomes {
		x, _ := o.Definition.Get(parameter)
		if !o.OK() {
			fmt.Fprintf(tw, "%.6g\t-\t-\t-\t%s\n", x, kind(o.Err))
			continue
		}
		p := o.Performance
		fmt.Fprintf(tw, "%.6g\t%.1f\t%.1f\t%.6g\t收敛\n", x, p.IspDelivered, p.PumpPower/1e3, p.Unknown())
	}
	tw.Flush()
	fmt.Fprintf(w, "共 %d 点,失败 %d,无解 %d,耗时 %s\n", len(res.Outcomes), res.Failed, res.Infeasible, res.Elapsed)
}

func printUQ(w io.Writer, res batch.UQResult) {
	fmt.Fprintf(w, "样本 %d,失败 %d\n", res.Samples, res.Failed)
	names := make([]string, 0, len(res.Statistics))
	for k := range res.Statistics {
		names = append(names, k)
	}
	sort.Strings(names)
	tw := table(w)
	fmt.Fprintln(tw, "输出\tN\t均值\t标准差\t中位数\tP05\tP95\t95% 区间")
	for _, k := range names {
		s := res.Statistics[k]
		fmt.Fprintf(tw, "%s\t%d\t%.6g\t%.4g\t%.6g\t%.6g\t%.6g\t[%.6g, %.6g]\n",
			k, s.N, s.Mean, s.Std, s.Median, s.P05, s.P95, s.CI95Lower, s.CI95Upper)
	}
	tw.Flush()

	fmt.Fprintln(w)
	tw = table(w)
	fmt.Fprintln(tw, "参数\t输出\t相关系数\t一阶敏感度")
	for _, p := range res.Parameters {
		for _, k := range names {
			fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\n", p.Name, k, res.Correlation[p.Name][k], res.Sensitivity[p.Name][k])
		}
	}
	tw.Flush()
}

func writeJSON(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// kind 错误类别名称
func kind(err error) string {
	switch {
	case errors.Is(err, types.ErrInvalidParameter):
		return "参数非法"
	case errors.Is(err, types.ErrUnsolvable):
		return "无解"
	case errors.Is(err, types.ErrNotConverged):
		return "未收敛"
	}
	return "失败"
}

// report 输出错误类别与相关数值
func report(w io.Writer, err error) {
	fmt.Fprintf(w, "错误 [%s]: %v\n", kind(err), err)
	var (
		ip *types.InvalidParameterError
		pu *types.PowerBalanceUnsolvable
		ce *types.ConvergenceError
		se *load.SchemaError
	)
	switch {
	case errors.As(err, &ip):
		fmt.Fprintf(w, "  元件=%s 参数=%s 值=%g\n", ip.Component, ip.Parameter, ip.Value)
	case errors.As(err, &pu):
		fmt.Fprintf(w, "  区间=[%g, %g] 端点残差=%g / %g W 采样=%d\n", pu.Lo, pu.Hi, pu.ResidualLo, pu.ResidualHi, pu.Samples)
	case errors.As(err, &ce):
		fmt.Fprintf(w, "  估计=%g 残差=%g W 容差=%g W 迭代=%d\n", ce.Estimate, ce.Residual, ce.Tolerance, ce.Iterations)
	case errors.As(err, &se):
		for _, v := range se.Violations {
			fmt.Fprintf(w, "  %s\n", v)
		}
	}
}
