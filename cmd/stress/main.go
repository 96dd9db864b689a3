// Command stress drives concurrent producers and consumers against a
// SortedList and, as a single-threaded baseline, a KeyedPriorityQueue,
// reporting throughput, pop-order violations, and host resource usage.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/csl/lib/csl"
	"github.com/benz9527/csl/lib/hrtime"
	"github.com/benz9527/csl/lib/ipc"
	"github.com/benz9527/csl/lib/queue"
	"github.com/benz9527/csl/observability"
	"github.com/benz9527/csl/xlog"
)

type stressConfig struct {
	producers      int
	consumers      int
	itemsPerWorker int
	poolSize       int
	metricsMode    string
	cpuProfile     string
}

func loadConfig() stressConfig {
	cfg := stressConfig{}
	flag.IntVar(&cfg.producers, "producers", 8, "number of producer goroutines")
	flag.IntVar(&cfg.consumers, "consumers", 8, "number of consumer goroutines")
	flag.IntVar(&cfg.itemsPerWorker, "items", 50_000, "items inserted per producer")
	flag.IntVar(&cfg.poolSize, "pool-size", 64, "ants worker pool capacity")
	flag.StringVar(&cfg.metricsMode, "metrics", "console", "metrics exporter: console or prometheus")
	flag.StringVar(&cfg.cpuProfile, "cpu-profile", "", "write a CPU profile to this path (disabled if empty)")
	flag.Parse()
	return cfg
}

// maxprocsLogf adapts xlog.XLogger to the func(string, ...any) signature
// maxprocs.Logger expects.
func maxprocsLogf(logger xlog.XLogger) func(string, ...any) {
	return func(format string, args ...any) {
		logger.Logf(zapcore.InfoLevel, format, args...)
	}
}

func newLogger() xlog.XLogger {
	return xlog.NewXLogger(
		xlog.WithXLoggerStdOutWriter(),
		xlog.WithXLoggerLevel(xlog.LogLevelInfo),
	)
}

// scenarioResult holds the outcome of racing producers/consumers against a
// single queue.PriorityStructure implementation.
type scenarioResult struct {
	name           string
	inserted       int64
	popped         int64
	orderViolation bool
	wallTime       time.Duration
	insertLatency  time.Duration
	popLatency     time.Duration
}

// runScenario fans producers and consumers, both bounded by an ants pool,
// across ps and reports aggregate throughput and min-key ordering health.
func runScenario(name string, cfg stressConfig, logger xlog.XLogger, ps queue.PriorityStructure[int64, int64]) scenarioResult {
	pool, err := ants.NewPool(cfg.poolSize)
	if err != nil {
		logger.Error(err, "failed to create ants pool", zap.String("scenario", name))
		return scenarioResult{name: name}
	}
	defer pool.Release()

	done := ipc.NewSafeClosableChannel[struct{}]()
	var producersDone sync.WaitGroup
	var consumersDone sync.WaitGroup

	var inserted, popped int64
	var insertLatencyNs, popLatencyNs int64
	var lastPopped int64 = -1
	var orderViolation atomic.Bool

	start := hrtime.UnixMonotonicClock.NowInUTC()

	producersDone.Add(cfg.producers)
	for p := 0; p < cfg.producers; p++ {
		p := p
		err := pool.Submit(func() {
			defer producersDone.Done()
			base := int64(p * cfg.itemsPerWorker)
			for i := 0; i < cfg.itemsPerWorker; i++ {
				key := base + int64(i)
				t0 := hrtime.UnixMonotonicClock.NowInUTC()
				ps.Insert(key, key)
				atomic.AddInt64(&insertLatencyNs, int64(hrtime.UnixMonotonicClock.Since(t0)))
				atomic.AddInt64(&inserted, 1)
			}
		})
		if err != nil {
			logger.Error(err, "failed to submit producer", zap.String("scenario", name))
			producersDone.Done()
		}
	}

	go func() {
		producersDone.Wait()
		_ = done.Close()
	}()

	consumersDone.Add(cfg.consumers)
	for c := 0; c < cfg.consumers; c++ {
		err := pool.Submit(func() {
			defer consumersDone.Done()
			for {
				t0 := hrtime.UnixMonotonicClock.NowInUTC()
				key, _, ok := ps.TryPopKey()
				if ok {
					atomic.AddInt64(&popLatencyNs, int64(hrtime.UnixMonotonicClock.Since(t0)))
					atomic.AddInt64(&popped, 1)
					prev := atomic.SwapInt64(&lastPopped, key)
					if prev >= 0 && key < prev {
						orderViolation.Store(true)
					}
					continue
				}
				if done.IsClosed() {
					return
				}
				runtime.Gosched()
			}
		})
		if err != nil {
			logger.Error(err, "failed to submit consumer", zap.String("scenario", name))
			consumersDone.Done()
		}
	}
	consumersDone.Wait()

	for {
		key, _, ok := ps.TryPopKey()
		if !ok {
			break
		}
		atomic.AddInt64(&popped, 1)
		prev := atomic.SwapInt64(&lastPopped, key)
		if prev >= 0 && key < prev {
			orderViolation.Store(true)
		}
	}

	wall := hrtime.UnixMonotonicClock.Since(start)
	res := scenarioResult{
		name:           name,
		inserted:       atomic.LoadInt64(&inserted),
		popped:         atomic.LoadInt64(&popped),
		orderViolation: orderViolation.Load(),
		wallTime:       wall,
	}
	if res.inserted > 0 {
		res.insertLatency = time.Duration(insertLatencyNs / res.inserted)
	}
	if res.popped > 0 {
		res.popLatency = time.Duration(popLatencyNs / res.popped)
	}
	return res
}

func reportHostStats(logger xlog.XLogger) {
	percents, err := cpu.Percent(200*time.Millisecond, false)
	if err != nil {
		logger.Error(err, "failed to sample cpu usage")
	} else if len(percents) > 0 {
		logger.Info(fmt.Sprintf("host cpu usage: %.2f%%", percents[0]))
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		logger.Error(err, "failed to sample memory usage")
		return
	}
	logger.Info(fmt.Sprintf("host memory: used=%.1f%% total=%dMiB", vm.UsedPercent, vm.Total/1024/1024))
}

func logScenario(logger xlog.XLogger, r scenarioResult) {
	logger.Info(fmt.Sprintf(
		"scenario=%s inserted=%d popped=%d order_violation=%v wall=%s avg_insert=%s avg_pop=%s",
		r.name, r.inserted, r.popped, r.orderViolation, r.wallTime, r.insertLatency, r.popLatency,
	))
}

func runStress(lc fx.Lifecycle, logger xlog.XLogger, cfg stressConfig, shutdownMetrics func(context.Context) error) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			observability.InitAppStats(ctx, "stress")
			reportHostStats(logger)

			sl := csl.New[int64, int64](csl.WithOtelMetrics[int64, int64]("csl.stress"))
			logScenario(logger, runScenario("sorted_list", cfg, logger, sl))

			kpq := queue.NewKeyedPriorityQueue[int64, int64](
				queue.WithKeyedPriorityQueueEnableThreadSafe[int64, int64](),
			)
			logScenario(logger, runScenario("keyed_priority_queue", cfg, logger, kpq))

			reportHostStats(logger)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if shutdownMetrics != nil {
				return shutdownMetrics(ctx)
			}
			return nil
		},
	})
}

func main() {
	cfg := loadConfig()
	logger := newLogger()
	defer logger.Sync()

	undo, err := maxprocs.Set(maxprocs.Logger(maxprocsLogf(logger)))
	if err != nil {
		logger.Error(err, "failed to adjust GOMAXPROCS for container limits")
	} else {
		defer undo()
	}

	shutdownMetrics, err := observability.InitMetricsExporter(cfg.metricsMode, 5*time.Second, time.Second)
	if err != nil {
		logger.Error(err, "failed to init metrics exporter")
		os.Exit(1)
	}

	if cfg.cpuProfile != "" {
		stopProfile, err := observability.StartProfile(observability.CPUProfile, cfg.cpuProfile)
		if err != nil {
			logger.Error(err, "failed to start cpu profile")
			os.Exit(1)
		}
		defer stopProfile()
	}

	app := fx.New(
		fx.Supply(cfg),
		fx.Supply(logger),
		fx.Supply(shutdownMetrics),
		fx.WithLogger(func() fxevent.Logger { return xlog.NewFxXLogger(logger) }),
		fx.Invoke(runStress),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		logger.Error(err, "fx app failed to start")
		os.Exit(1)
	}
	if err := app.Stop(ctx); err != nil {
		logger.Error(err, "fx app failed to stop")
		os.Exit(1)
	}
}
