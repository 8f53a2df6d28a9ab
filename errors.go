package nestgroup

import "errors"

// Sentinel errors for configuration failures.
// These errors describe definitions that cannot be turned into a working
// table. Grouping at render or query time never returns errors: a bad key or
// an unresolvable path degrades the grouping precision instead.
//
// Use the Is*Err helper functions to check for specific errors.
var (
	// ErrInvalidDefinition is returned when a definition file cannot be parsed
	// or fails structural validation.
	ErrInvalidDefinition = errors.New("nestgroup: invalid definition")

	// ErrUnknownModel is returned when a relation or table references a model
	// that is not declared.
	ErrUnknownModel = errors.New("nestgroup: unknown model")

	// ErrUnknownRelation is returned when a relationship path names a relation
	// the model graph does not declare.
	ErrUnknownRelation = errors.New("nestgroup: unknown relation")

	// ErrUnknownTable is returned when a table name is not configured.
	ErrUnknownTable = errors.New("nestgroup: unknown table")

	// ErrUnknownGroup is returned when a group id is not configured on a table.
	ErrUnknownGroup = errors.New("nestgroup: unknown group")

	// ErrInvalidKind is returned for a level kind other than plain or date.
	ErrInvalidKind = errors.New("nestgroup: invalid level kind")

	// ErrInvalidPrecision is returned for a date precision other than day,
	// month or year.
	ErrInvalidPrecision = errors.New("nestgroup: invalid date precision")
)

// IsInvalidDefinitionErr returns true if err is or wraps ErrInvalidDefinition.
func IsInvalidDefinitionErr(err error) bool {
	return errors.Is(err, ErrInvalidDefinition)
}

// IsUnknownModelErr returns true if err is or wraps ErrUnknownModel.
func IsUnknownModelErr(err error) bool {
	return errors.Is(err, ErrUnknownModel)
}

// IsUnknownRelationErr returns true if err is or wraps ErrUnknownRelation.
func IsUnknownRelationErr(err error) bool {
	return errors.Is(err, ErrUnknownRelation)
}

// IsUnknownTableErr returns true if err is or wraps ErrUnknownTable.
func IsUnknownTableErr(err error) bool {
	return errors.Is(err, ErrUnknownTable)
}

// IsUnknownGroupErr returns true if err is or wraps ErrUnknownGroup.
func IsUnknownGroupErr(err error) bool {
	return errors.Is(err, ErrUnknownGroup)
}

// IsInvalidKindErr returns true if err is or wraps ErrInvalidKind.
func IsInvalidKindErr(err error) bool {
	return errors.Is(err, ErrInvalidKind)
}

// IsInvalidPrecisionErr returns true if err is or wraps ErrInvalidPrecision.
func IsInvalidPrecisionErr(err error) bool {
	return errors.Is(err, ErrInvalidPrecision)
}
