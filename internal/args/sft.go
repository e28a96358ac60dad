package args

import (
	"strconv"

	"github.com/alecthomas/kingpin/v2"
)

// SFTArguments holds the script-level settings for supervised fine-tuning.
type SFTArguments struct {
	DatasetName                       string `yaml:"dataset_name"`
	DatasetTextField                  string `yaml:"dataset_text_field"`
	MaxSeqLength                      int    `yaml:"max_seq_length"`
	Packing                           bool   `yaml:"packing"`
	Config                            string `yaml:"config"`
	GradientCheckpointingUseReentrant bool   `yaml:"gradient_checkpointing_use_reentrant"`
}

// NewSFTArguments returns SFT arguments holding their compile-time defaults.
func NewSFTArguments() *SFTArguments {
	return &SFTArguments{
		DatasetName:      "timdettmers/openassistant-guanaco",
		DatasetTextField: "text",
		MaxSeqLength:     512,
	}
}

// Defaults returns a pristine copy for default comparison during merging.
func (a *SFTArguments) Defaults() Group {
	return NewSFTArguments()
}

// ConfigPath returns the YAML config file path supplied on the command line.
func (a *SFTArguments) ConfigPath() string {
	return a.Config
}

// RegisterFlags binds the SFT flags to the given subcommand.
func (a *SFTArguments) RegisterFlags(cmd *kingpin.CmdClause) {
	cmd.Flag("dataset-name", "Dataset identifier or local path").
		Default(a.DatasetName).StringVar(&a.DatasetName)
	cmd.Flag("dataset-text-field", "Name of the text field in the dataset").
		Default(a.DatasetTextField).StringVar(&a.DatasetTextField)
	cmd.Flag("max-seq-length", "Maximum sequence length for the SFT trainer").
		Default(strconv.Itoa(a.MaxSeqLength)).IntVar(&a.MaxSeqLength)
	cmd.Flag("packing", "Pack multiple samples into each sequence during training").
		BoolVar(&a.Packing)
	cmd.Flag("config", "Path to an optional YAML config file").
		StringVar(&a.Config)
	cmd.Flag("gradient-checkpointing-use-reentrant", "Use the reentrant implementation for gradient checkpointing").
		BoolVar(&a.GradientCheckpointingUseReentrant)
}
