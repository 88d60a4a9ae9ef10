package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrCompanyNotFound indicates the requested company does not exist.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrCompanySlugTaken indicates another company already uses the slug.
	ErrCompanySlugTaken = errors.New("company slug already in use")
	// ErrCompanyAlreadySaved indicates the user saved the company before.
	ErrCompanyAlreadySaved = errors.New("company already saved")
	// ErrSavedCompanyNotFound indicates the company is not in the user's saved list.
	ErrSavedCompanyNotFound = errors.New("saved company not found")
	// ErrTemplateNotFound indicates the template does not exist for the owner.
	ErrTemplateNotFound = errors.New("email template not found")
	// ErrTemplateNameTaken indicates the owner already has a template with that name.
	ErrTemplateNameTaken = errors.New("email template name already in use")
	// ErrForbidden indicates the actor may not modify the resource.
	ErrForbidden = errors.New("operation not permitted")
	// ErrInvalidInput is matched by every *InputError.
	ErrInvalidInput = errors.New("invalid input")
)

// InputError describes a rejected field value. Its message is safe to show to clients.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is lets errors.Is(err, ErrInvalidInput) match any InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidInput(field, message string) error {
	return &InputError{Field: field, Message: message}
}

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate")
}
