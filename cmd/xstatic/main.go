package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"

	"github.com/alecthomas/kong"
	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/config"
	"github.com/voidhawk/xstatic/pkg/pipeline"
	"github.com/voidhawk/xstatic/pkg/types"
)

type globals struct {
	Config   string `help:"Path to the config file." default:"xstatic.json" type:"path"`
	LogLevel string `help:"Log verbosity." default:"info" enum:"trace,debug,info,warn,error"`

	l   hclog.Logger
	cfg *config.Config
}

var cli struct {
	globals

	Build   buildCmd   `cmd:"" help:"Build a verified static binary for one or more targets."`
	Fetch   fetchCmd   `cmd:"" help:"Materialize the locked dependency graph into the cache."`
	Resolve resolveCmd `cmd:"" help:"Show the toolchain resolution for a target."`
	Serve   serveCmd   `cmd:"" help:"Run the scheduler and status server."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("xstatic"),
		kong.Description("Reproducible cross-platform static binary builds."),
		kong.UsageOnError(),
	)

	cli.l = hclog.New(&hclog.LoggerOptions{
		Name:  "xstatic",
		Level: hclog.LevelFromString(cli.LogLevel),
	})
	cli.l.Debug("xstatic is initializing")

	cfg := config.NewConfig()
	if _, err := os.Stat(cli.Config); err == nil {
		if err := cfg.LoadFromFile(cli.Config); err != nil {
			cli.l.Error("Error loading config", "error", err)
			os.Exit(pipeline.ExitConfiguration)
		}
	}
	if err := cfg.Validate(); err != nil {
		cli.l.Error("Invalid configuration", "error", err)
		os.Exit(pipeline.ExitConfiguration)
	}
	cli.cfg = cfg

	if err := kctx.Run(&cli.globals); err != nil {
		cli.l.Error(err.Error())
		os.Exit(exitCode(err))
	}
}

// exitCode extends the pipeline taxonomy with configuration errors
// that never reach a pipeline.
func exitCode(err error) int {
	var unknownFeature config.ErrUnknownFeature
	var unknownMode config.ErrUnknownLinkMode
	var missingField config.ErrMissingField
	if errors.As(err, &unknownFeature) || errors.As(err, &unknownMode) || errors.As(err, &missingField) {
		return pipeline.ExitConfiguration
	}
	return pipeline.ExitCode(err)
}

// buildPlatform determines the triple of the machine the orchestrator
// runs on, preferring an explicit config value.
func buildPlatform(cfg *config.Config) (types.TargetTriple, error) {
	if cfg.BuildPlatform != "" {
		return types.ParseTriple(cfg.BuildPlatform)
	}
	return types.ParseTriple(runtime.GOARCH + "-unknown-" + runtime.GOOS + "-gnu")
}

// signalContext cancels on SIGINT so that cancellation releases all
// scoped cache handles on the way out.
func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt)
	return ctx
}
