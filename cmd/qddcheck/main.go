package main

import (
	"flag"
	"fmt"
	"os"

	"qddcheck/internal/compare"
	"qddcheck/internal/config"
	"qddcheck/internal/logger"
	"qddcheck/internal/report"
	"qddcheck/internal/stats"
)

func main() {
	bench := flag.Bool("bench", false, "benchmark total runtime over all given circuits")
	tui := flag.Bool("tui", false, "browse the comparison interactively")
	metric := flag.String("metric", string(compare.MetricRuntime), "metric to chart per gate")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] circuit.qasm...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	m, err := compare.ParseMetric(*metric)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -metric")
	}

	opts := compare.Options{
		Backend:   cfg.Backend,
		MaxQubits: cfg.MaxDenseQubits,
		Sampler:   stats.NewSampler(cfg.MemorySampling),
		Tolerance: cfg.FidelityTolerance,
		Logger:    log,
	}

	if *bench {
		rows, err := compare.Benchmark(flag.Args(), opts)
		if err != nil {
			log.Fatal().Err(err).Msg("benchmark failed")
		}
		fmt.Println(report.RenderBenchmark(rows))
		fmt.Println(report.RenderBars(compare.RuntimePivot(rows), 0))
		return
	}

	for _, path := range flag.Args() {
		table, err := compare.CompareFile(path, opts)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("comparison failed")
		}
		if *tui {
			if err := report.Run(report.NewViewer(path, table, m, cfg.FidelityTolerance)); err != nil {
				log.Fatal().Err(err).Msg("viewer")
			}
			continue
		}
		fmt.Println(report.RenderTable(table, cfg.FidelityTolerance))
		fmt.Println(report.Summary(table, cfg.FidelityTolerance))
		fmt.Println(report.RenderBars(table.Pivot(m), 0))
	}
}
