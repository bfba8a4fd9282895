// Package main provides the rig command-line interface: run single commands
// through the execution engine or run declarative installer recipes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Cyclone1070/rig/internal/config"
	"github.com/Cyclone1070/rig/internal/console"
	"github.com/Cyclone1070/rig/internal/executor"
	"github.com/Cyclone1070/rig/internal/logging"
	"github.com/Cyclone1070/rig/internal/recipe"
	"github.com/Cyclone1070/rig/internal/rigerr"
)

// Exit codes for failures that are not a command's own exit code.
const (
	exitFailure = 1
	exitFatal   = 2
)

const usage = `Usage:
  rig exec [--sudo] [--capture] [--no-check] [--desc TEXT] [--timeout DUR] -- PROGRAM [ARGS...]
  rig recipe FILE...
  rig elevation
`

// Dependencies holds the components required to run the application.
type Dependencies struct {
	Config  *config.Config
	Spawner executor.Spawner
	Logger  executor.Logger
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	// ExecutorOptions are passed to the executor, mainly for tests.
	ExecutorOptions []executor.Option
}

func main() {
	// Load configuration (from defaults + ~/.config/rig/config.{toml,json})
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration.\n")
		cfg = config.DefaultConfig()
	}

	sink, err := logging.Open(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		sink = logging.Nop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], Dependencies{
		Config:  cfg,
		Spawner: executor.NewOSSpawner(),
		Logger:  sink,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	})
	stop()
	_ = sink.Close()
	os.Exit(code)
}

// app is the wired set of components one invocation works with.
type app struct {
	deps    Dependencies
	console *console.Console
	exec    *executor.Executor
}

func newApp(deps Dependencies) *app {
	con := console.New(deps.Stdout, deps.Config.Console.NoColor)
	opts := append([]executor.Option{executor.WithStdio(deps.Stdin, deps.Stdout, deps.Stderr)}, deps.ExecutorOptions...)
	return &app{
		deps:    deps,
		console: con,
		exec:    executor.New(deps.Config, deps.Spawner, deps.Logger, con, opts...),
	}
}

func run(ctx context.Context, args []string, deps Dependencies) int {
	if len(args) == 0 {
		fmt.Fprint(deps.Stderr, usage)
		return exitFatal
	}

	a := newApp(deps)
	switch args[0] {
	case "exec":
		return a.runExec(ctx, args[1:])
	case "recipe":
		return a.runRecipes(ctx, args[1:])
	case "elevation":
		return a.runElevation(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(deps.Stdout, usage)
		return 0
	default:
		fmt.Fprintf(deps.Stderr, "unknown command %q\n%s", args[0], usage)
		return exitFatal
	}
}

func (a *app) runExec(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	fs.SetOutput(a.deps.Stderr)
	sudo := fs.Bool("sudo", false, "run the command with elevated privileges")
	capture := fs.Bool("capture", false, "capture combined output instead of showing it live")
	noCheck := fs.Bool("no-check", false, "do not treat a non-zero exit code as a failure")
	desc := fs.String("desc", "", "description shown before the command runs")
	timeout := fs.Duration("timeout", 0, "per-attempt time limit (0 disables)")
	if err := fs.Parse(args); err != nil {
		return exitFatal
	}
	if fs.NArg() == 0 {
		fmt.Fprint(a.deps.Stderr, usage)
		return exitFatal
	}
	if *timeout < 0 {
		fmt.Fprintf(a.deps.Stderr, "invalid --timeout %s\n", *timeout)
		return exitFatal
	}

	spec := executor.CommandSpec{
		Argv:           fs.Args(),
		Elevate:        *sudo,
		Capture:        *capture,
		IgnoreExitCode: *noCheck,
		Description:    *desc,
		Timeout:        *timeout,
	}

	res, err := a.exec.Execute(ctx, spec)
	if err != nil {
		return a.reportFailure(err)
	}
	if spec.Capture && res.Output != "" {
		fmt.Fprint(a.deps.Stdout, strings.TrimRight(res.Output, "\n")+"\n")
	}
	return res.ExitCode
}

// reportFailure prints err for the operator and returns the process exit code.
func (a *app) reportFailure(err error) int {
	var rigErr *rigerr.Error
	if !errors.As(err, &rigErr) {
		a.console.Error(err.Error())
		return exitFatal
	}

	a.console.Error(fmt.Sprintf("[%s] %s", rigErr.Kind, rigErr.Message))
	if rigErr.Suggestion != "" {
		a.console.Warn("Suggestion", rigErr.Suggestion)
	}
	// Unclassified failures are the one place raw output is worth showing.
	if rigErr.Kind == rigerr.KindGeneric && rigErr.Output != "" {
		a.console.Dim(strings.TrimRight(rigErr.Output, "\n"))
	}
	return exitFailure
}

func (a *app) runRecipes(ctx context.Context, paths []string) int {
	if len(paths) == 0 {
		fmt.Fprint(a.deps.Stderr, usage)
		return exitFatal
	}

	recipes := make([]*recipe.Recipe, 0, len(paths))
	for _, path := range paths {
		rec, err := recipe.Load(path)
		if err != nil {
			a.console.Error(err.Error())
			return exitFatal
		}
		recipes = append(recipes, rec)
	}

	runner := recipe.NewRunner(a.exec, a.console)
	results := make([]recipe.InstallerResult, 0, len(recipes))
	start := time.Now()
	for _, rec := range recipes {
		results = append(results, runner.Run(ctx, rec))
		if ctx.Err() != nil {
			break
		}
	}
	return a.printSummary(results, time.Since(start))
}

func (a *app) printSummary(results []recipe.InstallerResult, elapsed time.Duration) int {
	failed := 0
	a.console.Printf("")
	a.console.Printf("Summary (%s)", elapsed.Round(time.Second))
	for _, res := range results {
		if res.Success {
			a.console.Success(res.Name + ": " + res.Message)
			continue
		}
		failed++
		a.console.Error(res.Name + ": " + res.Message)
	}
	if failed > 0 {
		a.console.Printf("%d of %d recipes failed. See %s for details.", failed, len(results), a.logPath())
		return exitFailure
	}
	return 0
}

func (a *app) logPath() string {
	if p, ok := a.deps.Logger.(interface{ Path() string }); ok && p.Path() != "" {
		return p.Path()
	}
	return "the log"
}

func (a *app) runElevation(ctx context.Context) int {
	status := a.exec.CheckElevation(ctx)
	switch status {
	case executor.ElevationPasswordless:
		a.console.Success("Elevation: " + status.String())
	case executor.ElevationPasswordRequired:
		a.console.Warn("Elevation: "+status.String(), "You may be prompted for your password.")
	default:
		a.console.Error("Elevation: " + status.String())
		return exitFailure
	}
	return 0
}
