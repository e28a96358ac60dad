package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/nikihowe/trl/internal/args"
	"github.com/nikihowe/trl/internal/config"
	"github.com/nikihowe/trl/internal/logging"
	"github.com/nikihowe/trl/internal/parser"
	"github.com/nikihowe/trl/internal/run"
)

// commandGroups bundles the argument groups registered on one subcommand.
type commandGroups struct {
	script string
	groups []args.Group
}

func main() {
	app := kingpin.New("trl", "Command-line front end for the trl training framework")
	trainerBin := app.Flag("trainer-bin", "Trainer executable to launch").Default("trl-trainer").String()
	quiet := app.Flag("quiet", "Only log errors from this process").Bool()
	progressRPS := app.Flag("progress-log-rps", "Trainer progress lines relayed to the log per second").Default("2").Float64()

	sftCmd := app.Command("sft", "Run supervised fine-tuning")
	sft := registerGroups(sftCmd, "sft", args.NewSFTArguments())

	dpoCmd := app.Command("dpo", "Run direct preference optimization")
	dpo := registerGroups(dpoCmd, "dpo", args.NewDPOArguments())

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := buildLogger(*quiet)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	var selected commandGroups
	switch command {
	case sftCmd.FullCommand():
		selected = sft
	case dpoCmd.FullCommand():
		selected = dpo
	}

	fileCfg, err := parser.New(logger, selected.groups...).Resolve()
	if err != nil {
		logger.Fatal("failed to resolve configuration", zap.Error(err))
	}
	if fileCfg.Len() > 0 {
		logger.Debug("config file arguments", zap.String("args", fileCfg.ArgString()))
	}

	spec, err := newLaunchSpec(selected.script, selected.groups)
	if err != nil {
		logger.Fatal("failed to build launch spec", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	launcher := run.New(logger, *trainerBin,
		run.WithProgressThrottle(*progressRPS, int(*progressRPS)*2+1),
	)
	if err := launcher.Run(ctx, spec); err != nil {
		logger.Fatal("trainer failed", zap.Error(err))
	}
}

// registerGroups wires a script argument group plus the shared model and
// trainer groups onto a subcommand. Every subcommand gets its own instances
// so flag values never leak between commands.
func registerGroups(cmd *kingpin.CmdClause, script string, scriptArgs interface {
	args.Group
	RegisterFlags(*kingpin.CmdClause)
}) commandGroups {
	model := args.NewModelArguments()
	trainer := args.NewTrainerArguments()

	scriptArgs.RegisterFlags(cmd)
	model.RegisterFlags(cmd)
	trainer.RegisterFlags(cmd)

	return commandGroups{
		script: script,
		groups: []args.Group{scriptArgs, model, trainer},
	}
}

func buildLogger(quiet bool) (*zap.Logger, error) {
	if quiet {
		return logging.NewQuiet()
	}
	return logging.New()
}

// newLaunchSpec serializes the merged argument groups into the trainer argv.
func newLaunchSpec(script string, groups []args.Group) (run.Spec, error) {
	targets := make([]any, len(groups))
	for i, group := range groups {
		targets[i] = group
	}
	argv, err := config.Argv(targets...)
	if err != nil {
		return run.Spec{}, fmt.Errorf("serialize arguments: %w", err)
	}
	return run.Spec{Script: script, Args: argv}, nil
}
