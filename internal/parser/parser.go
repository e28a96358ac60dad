package parser

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nikihowe/trl/internal/args"
	"github.com/nikihowe/trl/internal/config"
)

// ErrConfigTwice is returned when more than one argument group declares the
// --config flag in a single invocation.
var ErrConfigTwice = errors.New("`config` passed more than once, pass it for a single argument group only")

// Parser merges a set of parsed argument groups with an optional YAML config
// file.
type Parser struct {
	logger *zap.Logger
	groups []args.Group
}

// New constructs a Parser over already-parsed argument groups.
func New(logger *zap.Logger, groups ...args.Group) *Parser {
	return &Parser{logger: logger, groups: groups}
}

// Resolve loads the config file (if any group supplied one), exports its env
// block, merges file values into every group, and applies post-processing.
// It returns the loaded file config so callers can inspect or serialize it.
func (p *Parser) Resolve() (*config.FileConfig, error) {
	path, err := p.configPath()
	if err != nil {
		return nil, err
	}

	fileCfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := fileCfg.ApplyEnv(); err != nil {
		return nil, err
	}

	for _, group := range p.groups {
		if err := fileCfg.Merge(group, group.Defaults()); err != nil {
			return nil, fmt.Errorf("merge %T: %w", group, err)
		}
	}

	p.postProcess()

	if path != "" {
		p.logger.Debug("merged config file",
			zap.String("path", path),
			zap.Int("keys", fileCfg.Len()),
		)
	}
	return fileCfg, nil
}

// configPath finds the config file path among the groups, enforcing that only
// one group declares the flag.
func (p *Parser) configPath() (string, error) {
	var path string
	carriers := 0
	for _, group := range p.groups {
		carrier, ok := group.(args.ConfigCarrier)
		if !ok {
			continue
		}
		carriers++
		if carriers > 1 {
			return "", ErrConfigTwice
		}
		path = carrier.ConfigPath()
	}
	return path, nil
}

// postProcess applies cross-group fixups: the script-level reentrant toggle
// is mirrored into the trainer's gradient checkpointing kwargs.
func (p *Parser) postProcess() {
	var trainer *args.TrainerArguments
	var useReentrant *bool

	for _, group := range p.groups {
		switch g := group.(type) {
		case *args.TrainerArguments:
			trainer = g
		case *args.SFTArguments:
			v := g.GradientCheckpointingUseReentrant
			useReentrant = &v
		case *args.DPOArguments:
			v := g.GradientCheckpointingUseReentrant
			useReentrant = &v
		}
	}

	if trainer != nil && useReentrant != nil {
		trainer.GradientCheckpointingKwargs = map[string]any{
			"use_reentrant": *useReentrant,
		}
	}
}
