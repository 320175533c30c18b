package repository

import (
	"errors"
	"fmt"

	"attendance.service/internal/core/model"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	invalidTextCode         = "22P02"
)

func translatePgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case invalidTextCode:
			return fmt.Errorf("%w: %s", model.ErrInvalidInput, pgErr.Message)
		case uniqueViolationCode:
			switch pgErr.ConstraintName {
			case "users_email_key":
				return model.ErrEmailAlreadyExists
			case "attendance_records_user_date_key":
				return model.ErrAlreadyCheckedIn
			}
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "attendance_records_user_id_fkey" {
				return model.ErrUserNotFound
			}
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "attendance_records_checkout_check":
				return model.ErrCheckOutBeforeCheckIn
			case "attendance_records_status_check", "users_role_check":
				return fmt.Errorf("%w: %s", model.ErrInvalidInput, pgErr.ConstraintName)
			}
		}
	}

	return fmt.Errorf("repository: %w", err)
}
