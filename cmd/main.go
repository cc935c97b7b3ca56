package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/common/version"

	"slurm-eta/internal/pkg/log"
	"slurm-eta/internal/report"
)

// @title           slurm-eta
// @version         0.1.0
// @description     Slurm resource availability estimator
// @schema			http
// @BasePath        /api/v1
func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		logOpts log.Options
		est     estimateOptions
		srv     serveOptions
	)
	app := kingpin.New(filepath.Base(os.Args[0]), "Estimate when Slurm nodes or GPUs become available.")
	app.HelpFlag.Short('h')
	// Logging related flags
	app.Flag("log.level", "Log level, one of [debug, info, warn, error].").Default("info").EnumVar(&logOpts.Level, "debug", "info", "warn", "error")
	app.Flag("log.output", "Log output, one of [stdout, stderr, file].").Default("stderr").EnumVar(&logOpts.Output, "stdout", "stderr", "file")
	app.Flag("log.format", "Log format, one of [json, text].").Default("text").EnumVar(&logOpts.Format, "json", "text")
	app.Flag("log.file", "Log file path when --log.output=file.").PlaceHolder("PATH").StringVar(&logOpts.File)
	app.Flag("slurm.bin-dir", "Directory holding squeue, sinfo and scontrol. Empty means $PATH.").PlaceHolder("DIR").StringVar(&est.binDir)
	app.PreAction(func(*kingpin.ParseContext) error {
		if strings.EqualFold(logOpts.Output, "file") && !isValidFilePath(logOpts.File) {
			return fmt.Errorf("invalid --log.file path: %q", logOpts.File)
		}
		return nil
	})

	estimateCmd := app.Command("estimate", "Estimate the earliest time a request can start (default).").Default()
	estimateCmd.Flag("n-nodes", "Number of whole idle nodes requested.").PlaceHolder("N").IntVar(&est.nodes)
	estimateCmd.Flag("n-gpu", "Number of free GPUs requested on a single node.").PlaceHolder("G").IntVar(&est.gpus)
	estimateCmd.Flag("partition", "Only consider nodes of this partition.").PlaceHolder("P").StringVar(&est.partition)
	estimateCmd.Flag("exclude", "Nodes to leave out, nodelist notation accepted. Repeatable.").PlaceHolder("NODES").StringsVar(&est.exclude)
	estimateCmd.Flag("include-completing", "Treat completing (CG) jobs as still holding their resources.").BoolVar(&est.includeCompleting)
	estimateCmd.Flag("query.timeout", "Timeout for the squeue/sinfo/scontrol queries. 0 disables it.").Default("30s").DurationVar(&est.timeout)
	estimateCmd.Flag("output", "Output format, one of [text, json].").Default("text").EnumVar(&est.output, "text", "json")
	estimateCmd.Flag("max-details", "Maximum number of hosts listed in the report. 0 lists all.").Default(fmt.Sprint(report.DefaultMaxDetails)).IntVar(&est.maxDetails)
	estimateCmd.PreAction(func(*kingpin.ParseContext) error {
		return est.validate()
	})

	serveCmd := app.Command("serve", "Serve availability forecasts over HTTP.")
	serveCmd.Flag("server.listen-addr", "Server listen address (e.g. :8080 or 127.0.0.1:8080)").Default(":8081").StringVar(&srv.listenAddr)
	serveCmd.Flag("server.shutdown-timeout", "Graceful shutdown timeout (e.g. 10s)").Default("10s").DurationVar(&srv.shutdownTimeout)
	serveCmd.Flag("slurmrest.timeout", "Timeout for slurmrestd HTTP requests (Go duration, e.g. 5s, 1m).").Default("5s").DurationVar(&srv.slurmrestTimeout)
	serveCmd.Flag("config.file", "YAML file listing the clusters.").PlaceHolder("PATH").StringVar(&srv.configFile)
	serveCmd.Flag("postgres.dsn", "Postgres DSN of the cluster registry, overrides the config file.").PlaceHolder("DSN").StringVar(&srv.postgresDSN)

	app.Version(version.Print("slurm-eta"))

	cmd, err := app.Parse(args)
	if err != nil {
		// app.Usage 会重新解析参数并可能直接退出进程, 这里只提示 --help.
		fmt.Fprintln(os.Stderr, fmt.Errorf("failed to parse commandline arguments: %w", err))
		fmt.Fprintf(os.Stderr, "Try '%s --help' for more information.\n", app.Name)
		return report.ExitQueryFailed
	}
	// 创建 Logger
	logger, logClose, err := log.NewLogger(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to create logger: %v\n", err)
		return report.ExitQueryFailed
	}
	defer logClose()

	switch cmd {
	case serveCmd.FullCommand():
		srv.binDir = est.binDir
		if err := serve(logger, srv); err != nil {
			logger.Error("server failed", "err", err)
			return 1
		}
		return 0
	default:
		return runEstimate(logger, est, os.Stdout, os.Stderr)
	}
}

type estimateOptions struct {
	nodes             int
	gpus              int
	partition         string
	exclude           []string
	includeCompleting bool
	binDir            string
	timeout           time.Duration
	output            string
	maxDetails        int
}

// validate 要求 --n-nodes 与 --n-gpu 二选一且为正数.
func (o estimateOptions) validate() error {
	switch {
	case o.nodes != 0 && o.gpus != 0:
		return fmt.Errorf("--n-nodes and --n-gpu are mutually exclusive")
	case o.nodes == 0 && o.gpus == 0:
		return fmt.Errorf("one of --n-nodes or --n-gpu is required")
	case o.nodes < 0 || o.gpus < 0:
		return fmt.Errorf("requested count must be positive")
	case o.maxDetails < 0:
		return fmt.Errorf("--max-details must not be negative")
	}
	return nil
}

// isValidFilePath performs a light-weight validation for file paths.
// It accepts both absolute and relative paths and rejects empty paths
// or paths that end with a path separator (which usually indicate a directory).
func isValidFilePath(p string) bool {
	if strings.TrimSpace(p) == "" {
		return false
	}
	if strings.HasSuffix(p, string(os.PathSeparator)) {
		return false
	}
	base := filepath.Base(p)
	return base != "." && base != string(os.PathSeparator)
}
