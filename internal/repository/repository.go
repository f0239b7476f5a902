// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrToggleRaced means the insert found an existing row but the delete
	// found none: a concurrent writer removed it between the two statements.
	ErrToggleRaced = errors.New("toggle raced with a concurrent writer")
	// ErrUnknownField is returned for patch keys a content kind does not allow.
	ErrUnknownField = errors.New("unknown field")
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique-key violation from any
// supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// insertIfAbsent writes value unless a row with the same unique key exists and
// reports whether it wrote. The insert runs under a savepoint so a unique
// violation does not abort the surrounding transaction.
func insertIfAbsent(tx *gorm.DB, savepoint string, value interface{}) (bool, error) {
	if err := tx.SavePoint(savepoint).Error; err != nil {
		return false, err
	}

	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if res.Error != nil {
		if !IsUniqueViolation(res.Error) {
			return false, res.Error
		}
		if err := tx.RollbackTo(savepoint).Error; err != nil {
			return false, err
		}
		return false, nil
	}
	return res.RowsAffected == 1, nil
}
