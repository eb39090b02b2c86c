package account

import (
	stderrors "errors"
	"strings"

	"padel-server/internal/shared/errors"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Classify maps errors coming out of the identity backend onto the closed
// error-kind enum. The backend reports some failures only as free-text
// messages, so known substrings are matched here and nowhere else; the rest
// of the system never inspects message text.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		switch {
		case strings.Contains(pqErr.Constraint, "email"):
			return errors.ConflictField("email", "email already in use")
		case strings.Contains(pqErr.Constraint, "username"):
			return errors.ConflictField("username", "username already taken")
		default:
			return errors.Conflictf("duplicate value: %s", pqErr.Constraint)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already registered"):
		return errors.ConflictField("email", "email already registered")
	case strings.Contains(msg, "username already exists"):
		return errors.ConflictField("username", "username already taken")
	case strings.Contains(msg, "invalid login credentials"):
		return errors.Unauthorized("invalid email or password")
	}

	return err
}
