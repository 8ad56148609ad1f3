// Package sparseposegraph holds the option schemas of the collaborators of the sparse pose graph:
// the constraint builder that searches for loop closures and the optimization problem solved over
// the graph. Their contents are opaque to the pose graph options loader.
package sparseposegraph

import (
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/posegraph/config"
)

// FastCorrelativeScanMatcherOptions configures the branch and bound matcher used to find
// candidate loop closures.
type FastCorrelativeScanMatcherOptions struct {
	LinearSearchWindow  float64 `json:"linear_search_window"`
	AngularSearchWindow float64 `json:"angular_search_window"`
	BranchAndBoundDepth int     `json:"branch_and_bound_depth"`
}

// CeresScanMatcherOptions configures the refinement of a matched pose.
type CeresScanMatcherOptions struct {
	OccupiedSpaceWeight float64            `json:"occupied_space_weight"`
	TranslationWeight   float64            `json:"translation_weight"`
	RotationWeight      float64            `json:"rotation_weight"`
	CeresSolverOptions  CeresSolverOptions `json:"ceres_solver_options"`
}

// CeresSolverOptions configures a nonlinear least squares solve.
type CeresSolverOptions struct {
	UseNonmonotonicSteps bool `json:"use_nonmonotonic_steps"`
	MaxNumIterations     int  `json:"max_num_iterations"`
	NumThreads           int  `json:"num_threads"`
}

// ConstraintBuilderOptions configures the search for inter-submap constraints.
type ConstraintBuilderOptions struct {
	SamplingRatio              float64                           `json:"sampling_ratio"`
	MaxConstraintDistance      float64                           `json:"max_constraint_distance"`
	MinScore                   float64                           `json:"min_score"`
	GlobalLocalizationMinScore float64                           `json:"global_localization_min_score"`
	LogMatches                 bool                              `json:"log_matches"`
	FastCorrelativeScanMatcher FastCorrelativeScanMatcherOptions `json:"fast_correlative_scan_matcher"`
	CeresScanMatcher           CeresScanMatcherOptions           `json:"ceres_scan_matcher"`
}

// OptimizationProblemOptions configures the nonlinear problem built from the graph.
type OptimizationProblemOptions struct {
	HuberScale                              float64            `json:"huber_scale"`
	AccelerationWeight                      float64            `json:"acceleration_weight"`
	RotationWeight                          float64            `json:"rotation_weight"`
	ConsecutiveScanTranslationPenaltyFactor float64            `json:"consecutive_scan_translation_penalty_factor"`
	ConsecutiveScanRotationPenaltyFactor    float64            `json:"consecutive_scan_rotation_penalty_factor"`
	LogSolverSummary                        bool               `json:"log_solver_summary"`
	CeresSolverOptions                      CeresSolverOptions `json:"ceres_solver_options"`
}

// Validate ensures all parts of the options are valid.
func (o *ConstraintBuilderOptions) Validate() error {
	var err error
	if o.SamplingRatio <= 0 || o.SamplingRatio > 1 {
		err = multierr.Append(err, errors.Errorf("sampling_ratio must be in (0, 1], got %v", o.SamplingRatio))
	}
	if o.MaxConstraintDistance < 0 {
		err = multierr.Append(err, errors.Errorf("max_constraint_distance must not be negative, got %v", o.MaxConstraintDistance))
	}
	if o.MinScore < 0 || o.MinScore > 1 {
		err = multierr.Append(err, errors.Errorf("min_score must be in [0, 1], got %v", o.MinScore))
	}
	if o.GlobalLocalizationMinScore < 0 || o.GlobalLocalizationMinScore > 1 {
		err = multierr.Append(err,
			errors.Errorf("global_localization_min_score must be in [0, 1], got %v", o.GlobalLocalizationMinScore))
	}
	if o.FastCorrelativeScanMatcher.BranchAndBoundDepth < 0 {
		err = multierr.Append(err, errors.New("fast_correlative_scan_matcher.branch_and_bound_depth must not be negative"))
	}
	return multierr.Append(err, o.CeresScanMatcher.CeresSolverOptions.validate("ceres_scan_matcher.ceres_solver_options"))
}

// Validate ensures all parts of the options are valid.
func (o *OptimizationProblemOptions) Validate() error {
	var err error
	if o.HuberScale < 0 {
		err = multierr.Append(err, errors.Errorf("huber_scale must not be negative, got %v", o.HuberScale))
	}
	return multierr.Append(err, o.CeresSolverOptions.validate("ceres_solver_options"))
}

func (o *CeresSolverOptions) validate(path string) error {
	var err error
	if o.MaxNumIterations < 0 {
		err = multierr.Append(err, errors.Errorf("%s.max_num_iterations must not be negative", path))
	}
	if o.NumThreads < 0 {
		err = multierr.Append(err, errors.Errorf("%s.num_threads must not be negative", path))
	}
	return err
}

// CreateConstraintBuilderOptions decodes and validates constraint builder options.
func CreateConstraintBuilderOptions(d config.Dictionary) (ConstraintBuilderOptions, error) {
	var opts ConstraintBuilderOptions
	if err := decode(d, &opts); err != nil {
		return ConstraintBuilderOptions{}, errors.Wrap(err, "cannot decode constraint builder options")
	}
	if err := opts.Validate(); err != nil {
		return ConstraintBuilderOptions{}, errors.Wrap(err, "invalid constraint builder options")
	}
	return opts, nil
}

// CreateOptimizationProblemOptions decodes and validates optimization problem options.
func CreateOptimizationProblemOptions(d config.Dictionary) (OptimizationProblemOptions, error) {
	var opts OptimizationProblemOptions
	if err := decode(d, &opts); err != nil {
		return OptimizationProblemOptions{}, errors.Wrap(err, "cannot decode optimization problem options")
	}
	if err := opts.Validate(); err != nil {
		return OptimizationProblemOptions{}, errors.Wrap(err, "invalid optimization problem options")
	}
	return opts, nil
}

func decode(d config.Dictionary, result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(rejectFractionalInts),
		TagName:          "json",
		Result:           result,
		ErrorUnused:      true,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(d.AsMap())
}

// rejectFractionalInts keeps mapstructure from truncating floats such as 10.7 into integer fields.
// Integral floats are what JSON numbers decode to and are accepted.
func rejectFractionalInts(_, to reflect.Type, data interface{}) (interface{}, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return data, nil
	}
	if math.IsInf(f, 0) || math.Trunc(f) != f {
		return nil, errors.Errorf("expected an integer, got %v", f)
	}
	return data, nil
}
