package args

import (
	"strconv"

	"github.com/alecthomas/kingpin/v2"
)

// DPOArguments holds the script-level settings for direct preference
// optimization.
type DPOArguments struct {
	DatasetName                       string  `yaml:"dataset_name"`
	Beta                              float64 `yaml:"beta"`
	MaxLength                         int     `yaml:"max_length"`
	MaxPromptLength                   int     `yaml:"max_prompt_length"`
	MaxTargetLength                   int     `yaml:"max_target_length"`
	SanityCheck                       bool    `yaml:"sanity_check"`
	IgnoreBiasBuffers                 bool    `yaml:"ignore_bias_buffers"`
	GenerateDuringEval                bool    `yaml:"generate_during_eval"`
	Config                            string  `yaml:"config"`
	GradientCheckpointingUseReentrant bool    `yaml:"gradient_checkpointing_use_reentrant"`
}

// NewDPOArguments returns DPO arguments holding their compile-time defaults.
func NewDPOArguments() *DPOArguments {
	return &DPOArguments{
		Beta:            0.1,
		MaxLength:       512,
		MaxPromptLength: 128,
		MaxTargetLength: 128,
		SanityCheck:     true,
	}
}

// Defaults returns a pristine copy for default comparison during merging.
func (a *DPOArguments) Defaults() Group {
	return NewDPOArguments()
}

// ConfigPath returns the YAML config file path supplied on the command line.
func (a *DPOArguments) ConfigPath() string {
	return a.Config
}

// RegisterFlags binds the DPO flags to the given subcommand.
func (a *DPOArguments) RegisterFlags(cmd *kingpin.CmdClause) {
	cmd.Flag("dataset-name", "Dataset identifier or local path").
		StringVar(&a.DatasetName)
	cmd.Flag("beta", "Beta parameter for the DPO loss").
		Default(strconv.FormatFloat(a.Beta, 'g', -1, 64)).Float64Var(&a.Beta)
	cmd.Flag("max-length", "Maximum length of each sample").
		Default(strconv.Itoa(a.MaxLength)).IntVar(&a.MaxLength)
	cmd.Flag("max-prompt-length", "Maximum length of each sample's prompt").
		Default(strconv.Itoa(a.MaxPromptLength)).IntVar(&a.MaxPromptLength)
	cmd.Flag("max-target-length", "Maximum target length, used for encoder-decoder models only").
		Default(strconv.Itoa(a.MaxTargetLength)).IntVar(&a.MaxTargetLength)
	cmd.Flag("sanity-check", "Train on a small subset of samples only").
		Default("true").BoolVar(&a.SanityCheck)
	cmd.Flag("ignore-bias-buffers", "Skip LM bias/mask buffers when syncing distributed parameters").
		BoolVar(&a.IgnoreBiasBuffers)
	cmd.Flag("generate-during-eval", "Generate samples during evaluation").
		BoolVar(&a.GenerateDuringEval)
	cmd.Flag("config", "Path to an optional YAML config file").
		StringVar(&a.Config)
	cmd.Flag("gradient-checkpointing-use-reentrant", "Use the reentrant implementation for gradient checkpointing").
		BoolVar(&a.GradientCheckpointingUseReentrant)
}
