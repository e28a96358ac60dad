package args

import (
	"strconv"

	"github.com/alecthomas/kingpin/v2"
)

// ModelArguments selects the model checkpoint and its loading options.
type ModelArguments struct {
	ModelNameOrPath    string  `yaml:"model_name_or_path"`
	TorchDtype         string  `yaml:"torch_dtype"`
	AttnImplementation string  `yaml:"attn_implementation"`
	TrustRemoteCode    bool    `yaml:"trust_remote_code"`
	UsePEFT            bool    `yaml:"use_peft"`
	LoraR              int     `yaml:"lora_r"`
	LoraAlpha          int     `yaml:"lora_alpha"`
	LoraDropout        float64 `yaml:"lora_dropout"`
	LoadIn4Bit         bool    `yaml:"load_in_4bit"`
	LoadIn8Bit         bool    `yaml:"load_in_8bit"`
}

// NewModelArguments returns model arguments holding their compile-time defaults.
func NewModelArguments() *ModelArguments {
	return &ModelArguments{
		LoraR:       16,
		LoraAlpha:   32,
		LoraDropout: 0.05,
	}
}

// Defaults returns a pristine copy for default comparison during merging.
func (a *ModelArguments) Defaults() Group {
	return NewModelArguments()
}

// RegisterFlags binds the model flags to the given subcommand.
func (a *ModelArguments) RegisterFlags(cmd *kingpin.CmdClause) {
	cmd.Flag("model-name-or-path", "Model checkpoint identifier or local path").
		StringVar(&a.ModelNameOrPath)
	cmd.Flag("torch-dtype", "Override the default dtype when loading the model").
		StringVar(&a.TorchDtype)
	cmd.Flag("attn-implementation", "Attention implementation to use").
		StringVar(&a.AttnImplementation)
	cmd.Flag("trust-remote-code", "Allow custom model code from the hub").
		BoolVar(&a.TrustRemoteCode)
	cmd.Flag("use-peft", "Train with parameter-efficient fine-tuning").
		BoolVar(&a.UsePEFT)
	cmd.Flag("lora-r", "LoRA rank").
		Default(strconv.Itoa(a.LoraR)).IntVar(&a.LoraR)
	cmd.Flag("lora-alpha", "LoRA alpha").
		Default(strconv.Itoa(a.LoraAlpha)).IntVar(&a.LoraAlpha)
	cmd.Flag("lora-dropout", "LoRA dropout rate").
		Default(strconv.FormatFloat(a.LoraDropout, 'g', -1, 64)).Float64Var(&a.LoraDropout)
	cmd.Flag("load-in-4bit", "Load the model quantized to 4 bits").
		BoolVar(&a.LoadIn4Bit)
	cmd.Flag("load-in-8bit", "Load the model quantized to 8 bits").
		BoolVar(&a.LoadIn8Bit)
}
