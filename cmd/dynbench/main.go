package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ekonbenefits/dynamitey-sub000/adapters/nats"
	dynprom "github.com/ekonbenefits/dynamitey-sub000/adapters/prometheus"
	"github.com/ekonbenefits/dynamitey-sub000/core/cache"
	"github.com/ekonbenefits/dynamitey-sub000/core/dyn"
)

// === Config ===

// NOTE: for BACKEND=nats run nats: docker run --net=host nats:latest -js

var (
	N           = getEnvInt("N", 1_000_000)
	batchSize   = getEnvInt("B", 100_000)
	arity       = getEnvInt("ARITY", 2)
	useCache    = getEnvBool("CACHE", true)
	backendType = getEnv("BACKEND", "local")
	metricsAddr = getEnv("METRICS_ADDR", "")
	logLevel    = getEnv("LOG_LEVEL", "info")
)

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	return v == "1" || strings.ToLower(v) == "true"
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

// Calc is the dispatch target.
type Calc struct {
	Calls int
}

func (c *Calc) M0() int { c.Calls++; return 0 }

func (c *Calc) M1(a int) int { c.Calls++; return a }

func (c *Calc) M2(a, b int) int { c.Calls++; return a + b }

func (c *Calc) M3(a, b, cc int) int { c.Calls++; return a + b + cc }

func (c *Calc) Many(xs ...int) int {
	c.Calls++
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

func member() (string, []any) {
	args := make([]any, arity)
	for i := range args {
		args[i] = i
	}
	if arity <= 3 {
		return "M" + strconv.Itoa(arity), args
	}
	return "Many", args
}

func main() {
	var level slog.Level
	checkErr(level.UnmarshalText([]byte(logLevel)))
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	reg := prometheus.NewRegistry()
	registry := cache.NewRegistry()
	dynprom.RegisterCacheRegistry(reg, registry)

	e := dyn.New(dyn.Options{
		Registry:     registry,
		Metrics:      dynprom.NewDispatchMetrics(reg),
		Logger:       log,
		DisableCache: !useCache,
	})

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		defer func() { _ = srv.Close() }()
		log.Info("serving metrics", slog.String("addr", metricsAddr))
	}

	fmt.Printf("Backend: %s\n", backendType)
	fmt.Printf("  Cache: %s\n", strconv.FormatBool(useCache))
	fmt.Printf("  Arity: %d\n", arity)

	calc := &Calc{}
	var target any = calc
	switch backendType {
	case "nats":
		remote, cleanup := createNatsTarget(log, e, calc)
		defer cleanup()
		target = remote
	case "local":
	default:
		checkErr(fmt.Errorf("unknown backend %q", backendType))
	}

	name, args := member()

	// === START ===

	log.Info("==================================")
	log.Info("Starting ...", slog.String("member", name))

	startAt := time.Now()
	lastTime := startAt
	for i := 1; i <= N; i++ {
		_, err := e.InvokeMember(target, name, args...)
		checkErr(err)

		if i%batchSize == 0 {
			mu := getMemUsage()
			n := time.Now()
			took := n.Sub(lastTime)
			fmt.Printf(" | %7d calls | %6d ms | %9d calls/s | (%d / %d) MiB mem (sys) |\n", batchSize, took.Milliseconds(), int(float64(batchSize)/took.Seconds()), mu.Alloc/1024/1024, mu.Sys/1024/1024)
			lastTime = n
		}
	}

	// === stats ===
	println("")
	println("==========================================")

	took := time.Since(startAt)
	calls, err := e.Get(target, "Calls")
	checkErr(err)
	stats := e.Stats()
	runtime.GC()

	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("        calls: %v\n", calls)
	fmt.Printf("  sites built: %d\n", stats.SitesBuilt)
	fmt.Printf("  rules built: %d\n", stats.RulesBuilt)
	fmt.Printf("  hits/misses: %d / %d\n", stats.Hits, stats.Misses)
	fmt.Printf(" avg. calls/s: %d\n", int(float64(N)/took.Seconds()))
}

// createNatsTarget serves calc over NATS and returns a remote stand-in
// for it. Calls then pay a round trip on top of local dispatch.
func createNatsTarget(log *slog.Logger, e *dyn.Engine, calc *Calc) (*nats.Remote, func()) {
	connect := nats.ReuseConnection(nats.ConnectDefault())

	resp, err := nats.NewResponder(nats.ResponderConfig{
		Connect:       connect,
		Log:           log,
		SubjectPrefix: "dynbench",
		Engine:        e,
	})
	checkErr(err)
	checkErr(resp.Register("calc", calc))

	client, err := nats.NewClient(nats.ClientConfig{
		Connect:       connect,
		Log:           log,
		SubjectPrefix: "dynbench",
	})
	checkErr(err)

	return client.Object("calc"), func() {
		_ = client.Close()
		_ = resp.Close()
	}
}

// === stats helpers ===

type MemUsage struct {
	Alloc uint64 // bytes allocated and not yet freed (heap)
	Sys   uint64 // total bytes obtained from OS
}

func getMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{Alloc: m.Alloc, Sys: m.Sys}
}

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}
