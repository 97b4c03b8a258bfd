package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/reusee/dscope"
	"github.com/reusee/wiggler/builds"
	"github.com/reusee/wiggler/cmds"
	"github.com/reusee/wiggler/debugs"
	"github.com/reusee/wiggler/logs"
	"github.com/reusee/wiggler/modes"
	"github.com/reusee/wiggler/watches"
	"github.com/reusee/wiggler/wiggconfigs"
	"github.com/reusee/wiggler/wiggvm"
)

var (
	actionName string
	sourcePath string
	procName   string
	buildPaths []string

	argsFlag = cmds.Var[string]("-args", "comma separated procedure arguments")
	tapFlag  = cmds.Switch("-tap", "inspect the machine after run")
)

func init() {
	source := func(name string) func(string) {
		return func(path string) {
			actionName = name
			sourcePath = path
		}
	}
	cmds.Define("tokens", cmds.Func(source("tokens")).
		Desc("print the token stream of FILE, - for stdin"))
	cmds.Define("ast", cmds.Func(source("ast")).
		Desc("print the desugared syntax tree of FILE"))
	cmds.Define("disasm", cmds.Func(source("disasm")).
		Desc("disassemble FILE, a source or an image"))
	cmds.Define("watch", cmds.Func(source("watch")).
		Desc("recompile FILE on every change"))

	cmds.Define("build", cmds.Func(func(path string) {
		actionName = "build"
		buildPaths = append(buildPaths, path)
	}).Desc("compile FILE into an image under -o, repeatable"))

	proc := func(name string) func(string, string) {
		return func(path string, proc string) {
			actionName = name
			sourcePath = path
			procName = proc
		}
	}
	cmds.Define("run", cmds.Func(proc("run")).
		Desc("run procedure PROC of FILE with -args"))
	cmds.Define("debug", cmds.Func(proc("debug")).
		Desc("single-step procedure PROC of FILE"))
}

func main() {
	cmds.Execute(os.Args[1:])
	if actionName == "" {
		cmds.PrintUsage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	scope.Call(func(
		logger logs.Logger,
		newSpan logs.NewSpan,
	) {
		ctx, _ = newSpan(ctx, "")
		if err := execute(ctx, scope); err != nil {
			err = logs.WrapSpan(ctx, err)
			logger.ErrorContext(ctx, actionName+" failed", "err", err)
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	})
}

func execute(ctx context.Context, scope dscope.Scope) (err error) {
	switch actionName {

	case "tokens", "ast":
		src, err := readSource(sourcePath)
		if err != nil {
			return err
		}
		if actionName == "tokens" {
			return printTokens(os.Stdout, src)
		}
		return printAST(os.Stdout, src)

	case "disasm":
		scope.Call(func(
			load builds.Load,
			compile builds.Compile,
		) {
			var image *wiggvm.Image
			image, err = loadImage(ctx, sourcePath, load, compile)
			if err != nil {
				return
			}
			err = printListing(os.Stdout, image)
		})

	case "build":
		scope.Call(func(
			build builds.Build,
		) {
			var results []builds.Result
			results, err = build(ctx, buildPaths)
			for _, result := range results {
				if result.Output != "" {
					fmt.Println(result.Output)
				}
			}
		})

	case "run", "debug":
		scope.Call(func(
			load builds.Load,
			compile builds.Compile,
			trace wiggconfigs.Trace,
			maxSteps wiggconfigs.MaxSteps,
			logger logs.Logger,
			debug debugs.Debug,
			tap debugs.Tap,
		) {
			err = runOrDebug(ctx, load, compile, trace, maxSteps, logger, debug, tap)
		})

	case "watch":
		scope.Call(func(
			watch watches.Watch,
			compile builds.Compile,
			logger logs.Logger,
		) {
			rebuild := func(ctx context.Context, path string) error {
				src, err := builds.ReadSource(path)
				if err != nil {
					return err
				}
				program, err := compile(ctx, src)
				if err != nil {
					return err
				}
				return printListing(os.Stdout, program.Image(path))
			}
			if err := rebuild(ctx, sourcePath); err != nil {
				logger.ErrorContext(ctx, "compile", "path", sourcePath, "err", err)
			}
			err = watch(ctx, []string{sourcePath}, rebuild)
		})

	default:
		return fmt.Errorf("unknown action %s", actionName)
	}

	return
}

func runOrDebug(
	ctx context.Context,
	load builds.Load,
	compile builds.Compile,
	trace wiggconfigs.Trace,
	maxSteps wiggconfigs.MaxSteps,
	logger logs.Logger,
	debug debugs.Debug,
	tap debugs.Tap,
) error {
	image, err := loadImage(ctx, sourcePath, load, compile)
	if err != nil {
		return err
	}
	args, err := parseArgs(*argsFlag)
	if err != nil {
		return err
	}
	bench, hardware := newHardware(ctx, trace, logger)
	m, err := prepare(image, procName, args, hardware)
	if err != nil {
		return err
	}

	if actionName == "debug" {
		d := debugs.NewDebugger(m, image.Labels(), os.Stdout)
		d.MaxSteps = uint64(maxSteps)
		d.Tap = tap
		return debug(ctx, d)
	}

	ret, err := runProc(ctx, m, maxSteps)
	if *tapFlag {
		globals := debugs.MachineGlobals(m, image.Labels())
		globals["events"] = bench.Events
		tap(ctx, "run", globals)
	}
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "run",
		"proc", procName,
		"steps", m.Steps,
		"waited", bench.Waited,
	)
	fmt.Println(ret)
	return nil
}
