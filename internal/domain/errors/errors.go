package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies every failure the engine can report.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidColumnDefinition
	KindDuplicateTableName
	KindDuplicateRowPrimaryKey
	KindUnknownColumn
	KindCannotBeNull
	KindInvalidOperation
	KindInvalidMethodCall
	KindIOError
	KindInvalidFile
)

// String returns the snake_case name of the kind
func (k Kind) String() string {
	switch k {
	case KindInvalidColumnDefinition:
		return "invalid_column_definition"
	case KindDuplicateTableName:
		return "duplicate_table_name"
	case KindDuplicateRowPrimaryKey:
		return "duplicate_row_pk"
	case KindUnknownColumn:
		return "unknown_column"
	case KindCannotBeNull:
		return "cannot_be_null"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindInvalidMethodCall:
		return "invalid_method_call"
	case KindIOError:
		return "io_error"
	case KindInvalidFile:
		return "invalid_file"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching. Only the Kind is compared.
var (
	ErrInvalidColumnDefinition = &Error{Kind: KindInvalidColumnDefinition}
	ErrDuplicateTableName      = &Error{Kind: KindDuplicateTableName}
	ErrDuplicateRowPrimaryKey  = &Error{Kind: KindDuplicateRowPrimaryKey}
	ErrUnknownColumn           = &Error{Kind: KindUnknownColumn}
	ErrCannotBeNull            = &Error{Kind: KindCannotBeNull}
	ErrInvalidOperation        = &Error{Kind: KindInvalidOperation}
	ErrInvalidMethodCall       = &Error{Kind: KindInvalidMethodCall}
	ErrIOError                 = &Error{Kind: KindIOError}
	ErrInvalidFile             = &Error{Kind: KindInvalidFile}
)

// Error is the single error type returned by the engine
type Error struct {
	Kind    Kind
	Table   string // table name (empty if not table specific)
	Column  string // column name (empty if not column specific)
	Message string // human-readable explanation
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	var parts []string

	parts = append(parts, e.Kind.String())

	switch {
	case e.Table != "" && e.Column != "":
		parts = append(parts, fmt.Sprintf("%s.%s", e.Table, e.Column))
	case e.Table != "":
		parts = append(parts, e.Table)
	case e.Column != "":
		parts = append(parts, e.Column)
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the Kind from err, or KindUnknown when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func New(kind Kind, table, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Table:   table,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewUnknownColumn(table, column, clause string) *Error {
	return &Error{
		Kind:    KindUnknownColumn,
		Table:   table,
		Column:  column,
		Message: fmt.Sprintf("unknown column '%s' in %s", column, clause),
	}
}

func NewCannotBeNull(table, column, reason string) *Error {
	return &Error{
		Kind:    KindCannotBeNull,
		Table:   table,
		Column:  column,
		Message: reason,
	}
}

func NewDuplicateKey(table, index string) *Error {
	return &Error{
		Kind:    KindDuplicateRowPrimaryKey,
		Table:   table,
		Message: fmt.Sprintf("duplicate entry for key '%s'", index),
	}
}

func NewDerivedTable(table, op string) *Error {
	return &Error{
		Kind:    KindInvalidOperation,
		Table:   table,
		Message: fmt.Sprintf("cannot %s derived table", op),
	}
}

func NewIOError(table, op string, err error) *Error {
	return &Error{
		Kind:    KindIOError,
		Table:   table,
		Message: fmt.Sprintf("%s failed; error while accessing backing file", op),
		Err:     err,
	}
}

func NewInvalidFile(table string, err error) *Error {
	return &Error{
		Kind:    KindInvalidFile,
		Table:   table,
		Message: "could not read backing file",
		Err:     err,
	}
}
