package mapping

import (
	"github.com/pkg/errors"

	"go.viam.com/posegraph/config"
	"go.viam.com/posegraph/logging"
	"go.viam.com/posegraph/mapping/sparseposegraph"
)

// SparsePoseGraphOptions configures global optimization of the sparse pose graph. It is loaded once
// at startup and is read-only afterwards.
type SparsePoseGraphOptions struct {
	// OptimizeEveryNScans is the number of nodes added between global optimizations.
	OptimizeEveryNScans int `json:"optimize_every_n_scans"`

	ConstraintBuilderOptions sparseposegraph.ConstraintBuilderOptions `json:"constraint_builder"`

	// Weights applied to constraints found by the scan matcher.
	MatcherTranslationWeight float64 `json:"matcher_translation_weight"`
	MatcherRotationWeight    float64 `json:"matcher_rotation_weight"`

	OptimizationProblemOptions sparseposegraph.OptimizationProblemOptions `json:"optimization_problem"`

	// MaxNumFinalIterations caps the solver iterations of the final optimization. Always positive.
	MaxNumFinalIterations int `json:"max_num_final_iterations"`

	// GlobalSamplingRatio is the probability, in (0, 1], of attempting a full optimization instead
	// of a fast local update.
	GlobalSamplingRatio float64 `json:"global_sampling_ratio"`
}

// SubOptionsLoaders load the option records of the collaborators of the pose graph from their
// own sub-dictionaries.
type SubOptionsLoaders struct {
	ConstraintBuilder   func(config.Dictionary) (sparseposegraph.ConstraintBuilderOptions, error)
	OptimizationProblem func(config.Dictionary) (sparseposegraph.OptimizationProblemOptions, error)
}

// DefaultSubOptionsLoaders returns the loaders of the sparseposegraph package.
func DefaultSubOptionsLoaders() SubOptionsLoaders {
	return SubOptionsLoaders{
		ConstraintBuilder:   sparseposegraph.CreateConstraintBuilderOptions,
		OptimizationProblem: sparseposegraph.CreateOptimizationProblemOptions,
	}
}

// CreateSparsePoseGraphOptions reads the sparse pose graph options from a dictionary. Any error is
// a configuration bug that the caller is expected to treat as fatal.
func CreateSparsePoseGraphOptions(
	d config.Dictionary,
	loaders SubOptionsLoaders,
	logger logging.Logger,
) (SparsePoseGraphOptions, error) {
	var opts SparsePoseGraphOptions
	var err error

	if opts.OptimizeEveryNScans, err = d.GetInt("optimize_every_n_scans"); err != nil {
		return SparsePoseGraphOptions{}, err
	}

	constraintBuilder, err := d.GetDictionary("constraint_builder")
	if err != nil {
		return SparsePoseGraphOptions{}, err
	}
	if opts.ConstraintBuilderOptions, err = loaders.ConstraintBuilder(constraintBuilder); err != nil {
		return SparsePoseGraphOptions{}, errors.Wrap(err, "constraint_builder")
	}

	if opts.MatcherTranslationWeight, err = d.GetDouble("matcher_translation_weight"); err != nil {
		return SparsePoseGraphOptions{}, err
	}
	if opts.MatcherRotationWeight, err = d.GetDouble("matcher_rotation_weight"); err != nil {
		return SparsePoseGraphOptions{}, err
	}

	optimizationProblem, err := d.GetDictionary("optimization_problem")
	if err != nil {
		return SparsePoseGraphOptions{}, err
	}
	if opts.OptimizationProblemOptions, err = loaders.OptimizationProblem(optimizationProblem); err != nil {
		return SparsePoseGraphOptions{}, errors.Wrap(err, "optimization_problem")
	}

	if opts.MaxNumFinalIterations, err = d.GetNonNegativeInt("max_num_final_iterations"); err != nil {
		return SparsePoseGraphOptions{}, err
	}
	if opts.MaxNumFinalIterations <= 0 {
		return SparsePoseGraphOptions{}, errors.Errorf("max_num_final_iterations must be greater than 0, got %d",
			opts.MaxNumFinalIterations)
	}

	if opts.GlobalSamplingRatio, err = d.GetDouble("global_sampling_ratio"); err != nil {
		return SparsePoseGraphOptions{}, err
	}

	logger.Debugw("loaded sparse pose graph options",
		"optimize_every_n_scans", opts.OptimizeEveryNScans,
		"max_num_final_iterations", opts.MaxNumFinalIterations,
		"global_sampling_ratio", opts.GlobalSamplingRatio)
	return opts, nil
}

// MustCreateSparsePoseGraphOptions is like CreateSparsePoseGraphOptions but panics on error.
func MustCreateSparsePoseGraphOptions(
	d config.Dictionary,
	loaders SubOptionsLoaders,
	logger logging.Logger,
) SparsePoseGraphOptions {
	opts, err := CreateSparsePoseGraphOptions(d, loaders, logger)
	if err != nil {
		panic(errors.Wrap(err, "invalid sparse pose graph options"))
	}
	return opts
}
