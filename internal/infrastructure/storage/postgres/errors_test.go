package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: codeUniqueViolation}

	if !IsUniqueViolation(pgErr) {
		t.Error("expected unique violation to be detected")
	}
	if !IsUniqueViolation(fmt.Errorf("insert header: %w", pgErr)) {
		t.Error("expected wrapped unique violation to be detected")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: codeForeignKeyViolation}) {
		t.Error("foreign key violation misreported as unique violation")
	}
	if IsUniqueViolation(errors.New("plain error")) {
		t.Error("plain error misreported as unique violation")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: codeForeignKeyViolation}

	if !IsForeignKeyViolation(pgErr) {
		t.Error("expected foreign key violation to be detected")
	}
	if IsForeignKeyViolation(&pgconn.PgError{Code: codeUniqueViolation}) {
		t.Error("unique violation misreported as foreign key violation")
	}
	if IsForeignKeyViolation(nil) {
		t.Error("nil misreported as foreign key violation")
	}
}
