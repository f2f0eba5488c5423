package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	return NewWithGorm(gdb, Config{TxTimeout: 5}), mock
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	database, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE applications").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Exec("UPDATE applications SET status = ? WHERE id = ?", "withdrawn", 1).Error
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	database, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("business rule rejected")
	err := database.WithTx(context.Background(), func(tx *gorm.DB) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	database, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = database.WithTx(context.Background(), func(tx *gorm.DB) error {
			panic("unexpected")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxTimeoutPropagatesDeadline(t *testing.T) {
	database, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := database.WithTxTimeout(context.Background(), func(tx *gorm.DB) error {
		// 事务函数内部感知截止时间
		deadline, ok := tx.Statement.Context.Deadline()
		assert.True(t, ok)
		assert.False(t, deadline.IsZero())
		return errors.New("stop here")
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
