package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"turbocycle"
	"turbocycle/debug"
	"turbocycle/load"
	"turbocycle/server"
	"turbocycle/types"
)

const usage = `用法: turbocycle <命令> [参数] [文件]

命令:
  analyze  求解文件中的设计点并输出元件表
  compare  同一设计点按全部循环架构求解并对比
  sweep    按文件中的 sweep 配置并发扫描
  uq       按文件中的 uq 配置进行蒙特卡洛不确定性分析
  serve    启动 HTTP 服务

环境变量: TURBOCYCLE_TOLERANCE TURBOCYCLE_MAX_ITER TURBOCYCLE_WORKERS TURBOCYCLE_ADDR TURBOCYCLE_LOG_LEVEL
`

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	log := logger()
	slog.SetDefault(log)

	cmd, args := os.Args[1], os.Args[2:]
	var cfg config
	fs := flags(cmd, &cfg)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}

	var err error
	switch cmd {
	case "analyze", "compare", "sweep", "uq":
		_ = fs.Parse(args)
		if fs.NArg() != 1 {
			fs.Usage()
			os.Exit(2)
		}
		err = study(cmd, cfg, fs.Arg(0), log)
	case "serve":
		_ = fs.Parse(args)
		err = serve(cfg, log)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}

func study(cmd string, cfg config, path string, log *slog.Logger) error {
	st, err := load.File(path)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "analyze":
		return analyze(cfg, st)
	case "compare":
		points := st.Points()
		if len(points) == 0 {
			return errors.New("文件中没有设计点")
		}
		results := turbocycle.New(turbocycle.WithOptions(cfg.options())).Compare(points[0])
		printComparison(os.Stdout, results)
		return writeJSON(cfg.out, comparisons(results))
	case "sweep":
		if st.Sweep == nil {
			return fmt.Errorf("%s: 缺少 sweep 配置", path)
		}
		res, err := cfg.runner(log).Sweep(ctx, *st.Definition, *st.Sweep)
		if err != nil {
			return err
		}
		printSweep(os.Stdout, st.Sweep.Parameter, res)
		return writeJSON(cfg.out, res)
	case "uq":
		if st.UQ == nil {
			return fmt.Errorf("%s: 缺少 uq 配置", path)
		}
		res, err := cfg.runner(log).UQ(ctx, *st.Definition, *st.UQ)
		if err != nil {
			return err
		}
		printUQ(os.Stdout, res)
		return writeJSON(cfg.out, res)
	}
	return nil
}

// analyze 逐个求解设计点,首个失败即返回
func analyze(cfg config, st load.Study) error {
	points := st.Points()
	if len(points) == 0 {
		return errors.New("文件中没有设计点")
	}
	out := make([]types.Performance, 0, len(points))
	for i, def := range points {
		opts := []turbocycle.Option{turbocycle.WithOptions(cfg.options())}
		c := &debug.Charts{}
		if cfg.html != "" || cfg.png != "" {
			opts = append(opts, turbocycle.WithTrace(c))
		}
		p, err := turbocycle.New(opts...).Solve(def)
		// 失败时仍输出已记录的迭代过程
		if werr := writeTrace(cfg, c, i); werr != nil {
			slog.Warn("写入迭代图失败", "err", werr)
		}
		if err != nil {
			return err
		}
		printPerformance(os.Stdout, p)
		out = append(out, p)
	}
	if len(out) == 1 {
		return writeJSON(cfg.out, out[0])
	}
	return writeJSON(cfg.out, out)
}

func writeTrace(cfg config, c *debug.Charts, i int) error {
	if len(c.Points) == 0 {
		return nil
	}
	write := func(path string, render func(*os.File) error) error {
		if path == "" {
			return nil
		}
		if i > 0 {
			path = fmt.Sprintf("%s.%d", path, i)
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := render(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	if err := write(cfg.html, func(f *os.File) error { return c.Render(f) }); err != nil {
		return err
	}
	return write(cfg.png, func(f *os.File) error { return c.Plot(f) })
}

func serve(cfg config, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.addr,
		Handler:           server.New(cfg.runner(log)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
	log.Info("HTTP 服务启动", "addr", cfg.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("HTTP 服务已停止")
	return nil
}
