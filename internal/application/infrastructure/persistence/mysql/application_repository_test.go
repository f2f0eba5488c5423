package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/StefanoVidesott/WannaWork-App/internal/application/domain"
)

func newTestRepo(t *testing.T) (domain.ApplicationRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewApplicationRepository(gdb), mock
}

// 两个并发 apply 同时通过了状态机检查时，唯一索引是最后一道防线：
// 数据库层的 1062 冲突必须翻译成与状态机一致的业务错误。
func TestCreateTranslatesDuplicateKeyConflict(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("INSERT INTO `applications`").
		WillReturnError(&gomysql.MySQLError{
			Number:  1062,
			Message: "Duplicate entry '1-10' for key 'idx_student_offer'",
		})

	app := domain.NewApplication(1, 10, 2, "please consider me", time.Now())
	err := repo.Create(context.Background(), app)

	assert.ErrorIs(t, err, domain.ErrDuplicateActiveApplication)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePersistsApplicationAndHistory(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("INSERT INTO `applications`").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO `application_status_history`").
		WillReturnResult(sqlmock.NewResult(1, 1))

	app := domain.NewApplication(1, 10, 2, "please consider me", time.Now())
	err := repo.Create(context.Background(), app)

	require.NoError(t, err)
	assert.Equal(t, uint(7), app.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByStudentAndOfferReturnsNilWhenAbsent(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT .+ FROM `applications`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "offer_id"}))

	app, err := repo.FindByStudentAndOffer(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Nil(t, app)
	assert.NoError(t, mock.ExpectationsWereMet())
}
