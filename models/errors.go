package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrIntegrity is matched by every storage integrity failure.
	ErrIntegrity = errors.New("integrity violation")

	// ErrDuplicate is matched by unique constraint violations.
	ErrDuplicate = errors.New("duplicate key value")

	// ErrProtected is matched by foreign key violations, including deletes
	// of rows still referenced through an ON DELETE RESTRICT key.
	ErrProtected = errors.New("protected foreign key")
)

// Postgres SQLSTATE codes of class 23 (integrity constraint violation).
const (
	codeNotNull    = "23502"
	codeForeignKey = "23503"
	codeUnique     = "23505"
)

// IntegrityError is a constraint failure reported by the database.
type IntegrityError struct {
	Code       string
	Constraint string
	Err        error
}

func (e *IntegrityError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("integrity error (%s on %s): %v", e.Code, e.Constraint, e.Err)
	}
	return fmt.Sprintf("integrity error (%s): %v", e.Code, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// Is lets callers match the generic and the specific sentinels.
func (e *IntegrityError) Is(target error) bool {
	switch target {
	case ErrIntegrity:
		return true
	case ErrDuplicate:
		return e.Code == codeUnique
	case ErrProtected:
		return e.Code == codeForeignKey
	}
	return false
}

// FieldError is a single failed constraint on a field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects the failures of a full validation pass.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields groups the messages by field name.
func (e *ValidationError) Fields() map[string][]string {
	out := make(map[string][]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// Has reports whether the field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// FieldNames returns the failed field names, sorted.
func (e *ValidationError) FieldNames() []string {
	seen := map[string]struct{}{}
	var names []string
	for _, fe := range e.Errors {
		if _, ok := seen[fe.Field]; ok {
			continue
		}
		seen[fe.Field] = struct{}{}
		names = append(names, fe.Field)
	}
	sort.Strings(names)
	return names
}

// translateError maps driver errors to the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if isIntegrityCode(pgErr.Code) {
			return &IntegrityError{Code: pgErr.Code, Constraint: pgErr.ConstraintName, Err: err}
		}
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		if isIntegrityCode(code) {
			return &IntegrityError{Code: code, Constraint: pqErr.Constraint, Err: err}
		}
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &IntegrityError{Code: codeUnique, Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &IntegrityError{Code: codeForeignKey, Err: err}
	}
	return err
}

func isIntegrityCode(code string) bool {
	switch code {
	case codeNotNull, codeForeignKey, codeUnique:
		return true
	}
	return false
}
