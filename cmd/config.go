package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"turbocycle"
	"turbocycle/batch"
	"turbocycle/types"
)

// 环境变量
const (
	envTolerance = "TURBOCYCLE_TOLERANCE"
	envMaxIter   = "TURBOCYCLE_MAX_ITER"
	envWorkers   = "TURBOCYCLE_WORKERS"
	envAddr      = "TURBOCYCLE_ADDR"
	envLogLevel  = "TURBOCYCLE_LOG_LEVEL"
)

// config 命令行配置,环境变量为默认值,参数覆盖环境变量
type config struct {
	tolerance float64
	maxIter   int
	workers   int
	addr      string
	out       string // JSON 结果文件
	html      string // 迭代图表页面
	png       string // 残差扫描图
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// flags 子命令参数
func flags(name string, cfg *config) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Float64Var(&cfg.tolerance, "tol", envFloat(envTolerance, types.RelPowerTolerance), "功率平衡相对容差")
	fs.IntVar(&cfg.maxIter, "max-iter", envInt(envMaxIter, types.MaxIterations), "最大迭代次数")
	fs.IntVar(&cfg.workers, "workers", envInt(envWorkers, 0), "并发求解数,0 为 CPU 数")
	fs.StringVar(&cfg.out, "o", "", "结果写入 JSON 文件")
	switch name {
	case "serve":
		fs.StringVar(&cfg.addr, "addr", envString(envAddr, ":8080"), "监听地址")
	case "analyze":
		fs.StringVar(&cfg.html, "html", "", "迭代过程图表写入 HTML 文件")
		fs.StringVar(&cfg.png, "png", "", "残差扫描图写入 PNG 文件")
	}
	return fs
}

func (c config) options() turbocycle.Options {
	return turbocycle.Options{RelTolerance: c.tolerance, MaxIterations: c.maxIter}
}

func (c config) runner(log *slog.Logger) *batch.Runner {
	return &batch.Runner{Workers: c.workers, Options: c.options(), Logger: log}
}

// logger 按 TURBOCYCLE_LOG_LEVEL 创建文本日志
func logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(envString(envLogLevel, "info"))); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
