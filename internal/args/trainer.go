package args

import (
	"strconv"

	"github.com/alecthomas/kingpin/v2"
)

// TrainerArguments carries the training-loop settings forwarded to the
// external trainer. The trainer owns their full semantics; this process only
// merges and relays them.
type TrainerArguments struct {
	OutputDir                   string         `yaml:"output_dir"`
	LearningRate                float64        `yaml:"learning_rate"`
	NumTrainEpochs              float64        `yaml:"num_train_epochs"`
	PerDeviceTrainBatchSize     int            `yaml:"per_device_train_batch_size"`
	GradientAccumulationSteps   int            `yaml:"gradient_accumulation_steps"`
	GradientCheckpointing       bool           `yaml:"gradient_checkpointing"`
	GradientCheckpointingKwargs map[string]any `yaml:"gradient_checkpointing_kwargs"`
	LoggingSteps                int            `yaml:"logging_steps"`
	EvalSteps                   int            `yaml:"eval_steps"`
	SaveSteps                   int            `yaml:"save_steps"`
	Seed                        int            `yaml:"seed"`
	BF16                        bool           `yaml:"bf16"`
	FP16                        bool           `yaml:"fp16"`
	ReportTo                    []string       `yaml:"report_to"`
}

// NewTrainerArguments returns trainer arguments holding their compile-time
// defaults.
func NewTrainerArguments() *TrainerArguments {
	return &TrainerArguments{
		LearningRate:              5e-5,
		NumTrainEpochs:            3,
		PerDeviceTrainBatchSize:   8,
		GradientAccumulationSteps: 1,
		LoggingSteps:              500,
		SaveSteps:                 500,
		Seed:                      42,
	}
}

// Defaults returns a pristine copy for default comparison during merging.
func (a *TrainerArguments) Defaults() Group {
	return NewTrainerArguments()
}

// RegisterFlags binds the trainer flags to the given subcommand.
func (a *TrainerArguments) RegisterFlags(cmd *kingpin.CmdClause) {
	cmd.Flag("output-dir", "Directory where checkpoints and logs are written").
		StringVar(&a.OutputDir)
	cmd.Flag("learning-rate", "Initial learning rate").
		Default(strconv.FormatFloat(a.LearningRate, 'g', -1, 64)).Float64Var(&a.LearningRate)
	cmd.Flag("num-train-epochs", "Number of training epochs").
		Default(strconv.FormatFloat(a.NumTrainEpochs, 'g', -1, 64)).Float64Var(&a.NumTrainEpochs)
	cmd.Flag("per-device-train-batch-size", "Training batch size per device").
		Default(strconv.Itoa(a.PerDeviceTrainBatchSize)).IntVar(&a.PerDeviceTrainBatchSize)
	cmd.Flag("gradient-accumulation-steps", "Number of update steps to accumulate gradients over").
		Default(strconv.Itoa(a.GradientAccumulationSteps)).IntVar(&a.GradientAccumulationSteps)
	cmd.Flag("gradient-checkpointing", "Trade compute for memory during the backward pass").
		BoolVar(&a.GradientCheckpointing)
	cmd.Flag("logging-steps", "Log every N update steps").
		Default(strconv.Itoa(a.LoggingSteps)).IntVar(&a.LoggingSteps)
	cmd.Flag("eval-steps", "Evaluate every N update steps (0 disables)").
		Default(strconv.Itoa(a.EvalSteps)).IntVar(&a.EvalSteps)
	cmd.Flag("save-steps", "Save a checkpoint every N update steps").
		Default(strconv.Itoa(a.SaveSteps)).IntVar(&a.SaveSteps)
	cmd.Flag("seed", "Random seed").
		Default(strconv.Itoa(a.Seed)).IntVar(&a.Seed)
	cmd.Flag("bf16", "Train in bfloat16 precision").
		BoolVar(&a.BF16)
	cmd.Flag("fp16", "Train in float16 precision").
		BoolVar(&a.FP16)
	cmd.Flag("report-to", "Integrations to report results to (repeatable)").
		StringsVar(&a.ReportTo)
}
