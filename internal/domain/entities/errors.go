package entities

import (
	"errors"
	"fmt"
	"strings"
)

// MissingDefaultError indicates a strict default lookup found neither an override nor a profile value.
type MissingDefaultError struct {
	Location string
	Name     string
}

func (e *MissingDefaultError) Error() string {
	return fmt.Sprintf("%s: default value is missing for variable named %s", e.Location, e.Name)
}

// NewMissingDefaultError creates a new missing default error.
func NewMissingDefaultError(location, name string) *MissingDefaultError {
	return &MissingDefaultError{Location: location, Name: name}
}

// MissingRequiredError indicates a required value was never supplied.
type MissingRequiredError struct {
	Location string
	Name     string
	Message  string
}

func (e *MissingRequiredError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: a value has not been provided for required variable named %s: %s", e.Location, e.Name, e.Message)
	}
	return fmt.Sprintf("%s: a value has not been provided for required variable named %s", e.Location, e.Name)
}

// NewMissingRequiredError creates a new missing required error.
func NewMissingRequiredError(location, name string) *MissingRequiredError {
	return &MissingRequiredError{Location: location, Name: name}
}

// MissingKeywordsError indicates required keys were absent from an option bag.
// Missing always holds the complete sorted set.
type MissingKeywordsError struct {
	Location string
	Stage    string
	Missing  []string
	Hint     string
}

func (e *MissingKeywordsError) Error() string {
	msg := fmt.Sprintf("%s: keywords are missing for %s: [%s]", e.Location, e.Stage, strings.Join(e.Missing, ", "))
	if e.Hint != "" {
		msg += fmt.Sprintf(" (provide them via %s)", e.Hint)
	}
	return msg
}

// NewMissingKeywordsError creates a new missing keywords error.
func NewMissingKeywordsError(location, stage string, missing []string, hint string) *MissingKeywordsError {
	return &MissingKeywordsError{Location: location, Stage: stage, Missing: missing, Hint: hint}
}

// UnrecognizedKeywordsError indicates keys were left over after every expected partition was taken.
type UnrecognizedKeywordsError struct {
	Location string
	Keys     []string
}

func (e *UnrecognizedKeywordsError) Error() string {
	return fmt.Sprintf("%s: invalid input keywords encountered: [%s]", e.Location, strings.Join(e.Keys, ", "))
}

// NewUnrecognizedKeywordsError creates a new unrecognized keywords error.
func NewUnrecognizedKeywordsError(location string, keys []string) *UnrecognizedKeywordsError {
	return &UnrecognizedKeywordsError{Location: location, Keys: keys}
}

// UnresolvedDependencyError indicates a stage depends on producers that were not built.
// Hints lists the input keywords that would likely have requested the missing producers.
type UnresolvedDependencyError struct {
	Location string
	Stage    string
	Missing  []string
	Hints    []string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf(
		"%s: stage %q depends on stages that have not been requested: missing [%s]; this can likely be fixed by providing: [%s]",
		e.Location, e.Stage, strings.Join(e.Missing, ", "), strings.Join(e.Hints, ", "),
	)
}

// NewUnresolvedDependencyError creates a new unresolved dependency error.
func NewUnresolvedDependencyError(location, stage string, missing, hints []string) *UnresolvedDependencyError {
	return &UnresolvedDependencyError{Location: location, Stage: stage, Missing: missing, Hints: hints}
}

// UnsupportedMethodError indicates an optimization method outside the supported set.
type UnsupportedMethodError struct {
	Location string
	Method   string
	Valid    []string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("%s: invalid optimization method %q, valid options are: [%s]",
		e.Location, e.Method, strings.Join(e.Valid, ", "))
}

// NewUnsupportedMethodError creates a new unsupported method error.
func NewUnsupportedMethodError(location, method string, valid []string) *UnsupportedMethodError {
	return &UnsupportedMethodError{Location: location, Method: method, Valid: valid}
}

// InvalidCostFunctionError indicates a cost function that is neither a token nor a 2- or 3-tuple.
type InvalidCostFunctionError struct {
	Location string
	Value    any
}

func (e *InvalidCostFunctionError) Error() string {
	return fmt.Sprintf("%s: invalid optimization cost function %v, valid options are: variance, energy, (0.95,0.05), etc",
		e.Location, e.Value)
}

// NewInvalidCostFunctionError creates a new invalid cost function error.
func NewInvalidCostFunctionError(location string, value any) *InvalidCostFunctionError {
	return &InvalidCostFunctionError{Location: location, Value: value}
}

// DimensionMismatchError indicates parallel sweep dimensions of different lengths.
type DimensionMismatchError struct {
	Location  string
	Dimension string
	Got       int
	Want      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: must provide one %s per system: got %d, want %d",
		e.Location, e.Dimension, e.Got, e.Want)
}

// NewDimensionMismatchError creates a new dimension mismatch error.
func NewDimensionMismatchError(location, dimension string, got, want int) *DimensionMismatchError {
	return &DimensionMismatchError{Location: location, Dimension: dimension, Got: got, Want: want}
}

// UnnamableValueError indicates a sweep value that cannot become a directory name.
type UnnamableValueError struct {
	Location string
	Value    any
}

func (e *UnnamableValueError) Error() string {
	return fmt.Sprintf("%s: cannot convert value %v (%T) into a directory name", e.Location, e.Value, e.Value)
}

// NewUnnamableValueError creates a new unnamable value error.
func NewUnnamableValueError(location string, value any) *UnnamableValueError {
	return &UnnamableValueError{Location: location, Value: value}
}

// UnknownProfileError indicates a profile name not defined for a stage kind.
type UnknownProfileError struct {
	Location  string
	Kind      string
	Name      string
	Available []string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("%s: unknown %s profile %q, available: [%s]",
		e.Location, e.Kind, e.Name, strings.Join(e.Available, ", "))
}

// NewUnknownProfileError creates a new unknown profile error.
func NewUnknownProfileError(location, kind, name string, available []string) *UnknownProfileError {
	return &UnknownProfileError{Location: location, Kind: kind, Name: name, Available: available}
}

// DuplicateStageError indicates a label registered twice.
type DuplicateStageError struct {
	Location string
	Label    string
}

func (e *DuplicateStageError) Error() string {
	return fmt.Sprintf("%s: stage %q is already registered", e.Location, e.Label)
}

// NewDuplicateStageError creates a new duplicate stage error.
func NewDuplicateStageError(location, label string) *DuplicateStageError {
	return &DuplicateStageError{Location: location, Label: label}
}

// SealedRegistryError indicates a registration after assembly returned.
type SealedRegistryError struct {
	Location string
	Label    string
}

func (e *SealedRegistryError) Error() string {
	return fmt.Sprintf("%s: cannot register stage %q: registry is sealed", e.Location, e.Label)
}

// NewSealedRegistryError creates a new sealed registry error.
func NewSealedRegistryError(location, label string) *SealedRegistryError {
	return &SealedRegistryError{Location: location, Label: label}
}

// SharedPointNotFoundError indicates the designated shared-factor sweep point is not in the sweep.
type SharedPointNotFoundError struct {
	Location  string
	Wanted    any
	Available []string
}

func (e *SharedPointNotFoundError) Error() string {
	return fmt.Sprintf("%s: could not find shared point %v in sweep [%s]",
		e.Location, e.Wanted, strings.Join(e.Available, ", "))
}

// NewSharedPointNotFoundError creates a new shared point not found error.
func NewSharedPointNotFoundError(location string, wanted any, available []string) *SharedPointNotFoundError {
	return &SharedPointNotFoundError{Location: location, Wanted: wanted, Available: available}
}

// InvalidOptionError indicates an option value of the wrong shape.
type InvalidOptionError struct {
	Cause    error
	Location string
	Name     string
	Value    any
}

func (e *InvalidOptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: invalid value %v for option %s: %v", e.Location, e.Value, e.Name, e.Cause)
	}
	return fmt.Sprintf("%s: invalid value %v for option %s", e.Location, e.Value, e.Name)
}

func (e *InvalidOptionError) Unwrap() error {
	return e.Cause
}

// NewInvalidOptionError creates a new invalid option error.
func NewInvalidOptionError(location, name string, value any, cause error) *InvalidOptionError {
	return &InvalidOptionError{Location: location, Name: name, Value: value, Cause: cause}
}

// IsResolutionError reports whether err belongs to the resolution error taxonomy.
func IsResolutionError(err error) bool {
	var (
		missingDefault  *MissingDefaultError
		missingRequired *MissingRequiredError
		missingKeywords *MissingKeywordsError
		unrecognized    *UnrecognizedKeywordsError
		unresolved      *UnresolvedDependencyError
		unsupported     *UnsupportedMethodError
		invalidCost     *InvalidCostFunctionError
		mismatch        *DimensionMismatchError
		unnamable       *UnnamableValueError
		unknownProfile  *UnknownProfileError
		duplicate       *DuplicateStageError
		sealed          *SealedRegistryError
		sharedPoint     *SharedPointNotFoundError
		invalidOption   *InvalidOptionError
	)
	return errors.As(err, &missingDefault) ||
		errors.As(err, &missingRequired) ||
		errors.As(err, &missingKeywords) ||
		errors.As(err, &unrecognized) ||
		errors.As(err, &unresolved) ||
		errors.As(err, &unsupported) ||
		errors.As(err, &invalidCost) ||
		errors.As(err, &mismatch) ||
		errors.As(err, &unnamable) ||
		errors.As(err, &unknownProfile) ||
		errors.As(err, &duplicate) ||
		errors.As(err, &sealed) ||
		errors.As(err, &sharedPoint) ||
		errors.As(err, &invalidOption)
}
