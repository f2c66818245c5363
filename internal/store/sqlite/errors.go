package sqlite

import (
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/MrSnakeDoc/marksync/internal/domain"
)

// translate maps SQLite constraint failures onto the domain taxonomy so the
// engine can report them without parsing driver messages.
func translate(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique:
		return &domain.Error{Code: domain.CodeUniquenessViolation, Message: "unique constraint violated", Err: err}
	case sqlite3.ErrConstraintPrimaryKey:
		return &domain.Error{Code: domain.CodeConflict, Message: "record already exists", Err: err}
	case sqlite3.ErrConstraintForeignKey:
		return &domain.Error{Code: domain.CodeNotFound, Message: "referenced record does not exist", Err: err}
	default:
		return err
	}
}
