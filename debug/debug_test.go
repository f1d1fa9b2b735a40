package debug

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"turbocycle"
	"turbocycle/types"
)

func gasGenerator() types.Definition {
	return types.Definition{
		Cycle: types.CycleGasGenerator, Oxidizer: "lox", Fuel: "rp1",
		Thrust: 10e3, ChamberPressure: 5e6, MixtureRatio: 2.7, CStar: 1780,
	}
}

func unsolvable() types.Definition {
	def := gasGenerator()
	def.TurbineExhaustPressure = 4.4e6
	def.TurbineEfficiency = 0.05
	return def
}

func TestRecord(t *testing.T) {
	rec := &Record{}
	p, err := turbocycle.New(turbocycle.WithTrace(rec)).Solve(gasGenerator())
	if err != nil {
		t.Fatal(err)
	}
	if rec.Cycle != types.CycleGasGenerator || rec.Unknown != "gg_fraction" {
		t.Errorf("初始化错误: %s %s", rec.Cycle, rec.Unknown)
	}
	if len(rec.Points) != p.Evaluations {
		t.Errorf("记录 %d 点,求值 %d 次", len(rec.Points), p.Evaluations)
	}
	last, ok := rec.Last()
	if !ok {
		t.Fatal("没有记录")
	}
	if last.Stage != types.StageBrent {
		t.Errorf("最后阶段 %s", last.Stage)
	}
	if len(rec.Stage(types.StageBound)) != 2 {
		t.Errorf("端点求值 %d 次", len(rec.Stage(types.StageBound)))
	}

	var buf bytes.Buffer
	if err := rec.Render(&buf); err != nil {
		t.Fatal(err)
	}
	var back Record
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Points) != len(rec.Points) || back.Cycle != rec.Cycle {
		t.Errorf("JSON 往返不一致")
	}
}

func TestRecordError(t *testing.T) {
	var logs bytes.Buffer
	defer slog.SetDefault(slog.Default())
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))

	rec := &Record{}
	_, err := turbocycle.New(turbocycle.WithTrace(rec)).Solve(unsolvable())
	if !errors.Is(err, types.ErrUnsolvable) {
		t.Fatalf("应无解, got %v", err)
	}
	if logs.Len() != 0 {
		t.Errorf("记录器不应输出日志: %s", logs.String())
	}
	if len(rec.Errors) != 1 {
		t.Errorf("错误记录 %v", rec.Errors)
	}
	if n := len(rec.Stage(types.StageScan)); n == 0 {
		t.Errorf("应有扫描记录")
	}

	// 重新初始化清空记录
	rec.Init(types.CycleExpander, 1, 2)
	if len(rec.Points) != 0 || rec.Errors != nil || rec.Lo != 1 {
		t.Errorf("初始化未清空: %+v", rec)
	}
}

func TestCharts(t *testing.T) {
	c := &Charts{}
	if _, err := turbocycle.New(turbocycle.WithTrace(c)).Solve(unsolvable()); err == nil {
		t.Fatal("应无解")
	}
	w := httptest.NewRecorder()
	c.Handler(w, httptest.NewRequest("GET", "/", nil))
	body := w.Body.String()
	for _, s := range []string{"<html", "残差曲线", "功率曲线", "gg_fraction"} {
		if !strings.Contains(body, s) {
			t.Errorf("页面缺少 %q", s)
		}
	}
}

func TestPlot(t *testing.T) {
	rec := &Record{}
	if _, err := turbocycle.New(turbocycle.WithTrace(rec)).Solve(unsolvable()); err == nil {
		t.Fatal("应无解")
	}
	var buf bytes.Buffer
	if err := rec.Plot(&buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Errorf("不是 PNG 输出")
	}
	if err := (&Record{}).Plot(&buf); err == nil {
		t.Errorf("空记录应报错")
	}
}
