// Standard attribute keys for transfer-learning operations.
//
// Using these keys consistently across all logging call sites enables log
// analysis, monitoring and debugging of adaptation workflows. The keys follow
// a hierarchical naming convention (e.g. "model.name", "data.samples") to
// enable structured filtering.

package log

// Model and Operation Context
// These attributes identify the model type, instance, and operation being performed.
const (
	// ModelNameKey identifies the type of model.
	// Examples: "ImageClassifier", "ImageClassifierHead", "TradeOffScheduler"
	ModelNameKey = "model.name"

	// ModelIDKey provides a unique identifier for a specific model instance.
	// Useful for tracking multiple instances of the same model type.
	ModelIDKey = "model.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "forward", "evaluate", "step", "save", "load"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "nn", "modules", "adaptation.iwan", "metrics"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	// Examples: "training", "evaluation"
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
// These attributes describe the structure of the data being processed.
const (
	// SamplesKey indicates the number of samples (rows) in the batch.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the batch.
	// Important for debugging shape mismatches.
	FeaturesKey = "data.features"

	// ChannelsKey indicates the number of channels in a feature-map batch
	// laid out channel-major.
	ChannelsKey = "data.channels"

	// ClassesKey indicates the number of target classes.
	ClassesKey = "data.classes"

	// BatchSizeKey indicates the size of processing batches.
	BatchSizeKey = "data.batch_size"
)

// Performance Metrics
// These attributes capture timing, accuracy, and schedule information.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy for evaluation operations.
	// Range typically [0.0, 1.0].
	AccuracyKey = "metrics.accuracy"

	// ErrorRateKey records classification error rate (1 - accuracy).
	ErrorRateKey = "metrics.error_rate"

	// LossKey records a loss value during training or evaluation.
	LossKey = "metrics.loss"

	// IterationKey records the current iteration during iterative processes.
	IterationKey = "training.iteration"

	// EpochKey records the current epoch number during training.
	EpochKey = "training.epoch"

	// TradeOffKey records the current adversarial trade-off coefficient.
	TradeOffKey = "schedule.trade_off"

	// MaxItersKey records the schedule horizon in iterations.
	MaxItersKey = "schedule.max_iters"
)

// Domain Context
// These attributes identify which distribution a batch or metric belongs to.
const (
	// DomainKey names the data domain being processed.
	// Standard values: "source", "target"
	DomainKey = "domain.name"

	// DomainSource marks data drawn from the labeled source distribution.
	DomainSource = "source"

	// DomainTarget marks data drawn from the unlabeled target distribution.
	DomainTarget = "target"
)

// Error and Warning Context
// These attributes provide additional context for error and warning messages.
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	// Examples: "DIMENSION_MISMATCH", "NOT_READY", "SCHEDULE_OVERRUN"
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "ValidationError", "DimensionError", "NumericalInstabilityError"
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Automatically populated by the error logging handler.
	StacktraceKey = "error.stacktrace"

	// SuggestionKey provides helpful suggestions for resolving issues.
	// Examples: "Check input data shape", "Call Init or LoadModel first"
	SuggestionKey = "error.suggestion"
)

// Hyperparameters and Configuration
// These attributes capture model configuration for reproducibility.
const (
	// LearningRateKey records the relative learning-rate multiplier of a
	// parameter group.
	LearningRateKey = "hyperparams.lr"

	// BottleneckDimKey records the bottleneck projection width.
	BottleneckDimKey = "hyperparams.bottleneck_dim"

	// DropoutKey records a dropout probability.
	DropoutKey = "hyperparams.dropout"

	// AlphaKey records the sigmoid-ramp steepness of a schedule.
	AlphaKey = "hyperparams.alpha"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute value constants for common operations.
// Using these constants ensures consistency across the codebase.
const (
	// Standard operations
	OperationForward  = "forward"
	OperationEvaluate = "evaluate"
	OperationStep     = "step"
	OperationSave     = "save"
	OperationLoad     = "load"

	// Standard phases
	PhaseTraining   = "training"
	PhaseEvaluation = "evaluation"

	// Standard error codes
	ErrorNotReady             = "NOT_READY"
	ErrorDimensionMismatch    = "DIMENSION_MISMATCH"
	ErrorEmptyData            = "EMPTY_DATA"
	ErrorInvalidInput         = "INVALID_INPUT"
	ErrorNumericalInstability = "NUMERICAL_INSTABILITY"
	ErrorScheduleOverrun      = "SCHEDULE_OVERRUN"
)
