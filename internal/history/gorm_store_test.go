package history

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var historyColumns = []string{"id", "instruction", "model", "provider", "created_at_ms", "variations", "stored_at"}

func newMockGormStore(t *testing.T, limit int) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return NewGormStore(db, limit), mock
}

func TestGormStore_AppendInsertsAndTrims(t *testing.T) {
	store, mock := newMockGormStore(t, 2)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "generation_history" ("id","instruction","model","provider","created_at_ms","variations","stored_at")`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "generation_history" WHERE id NOT IN \(SELECT .*id.* FROM "generation_history" ORDER BY created_at_ms DESC LIMIT .+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Append(context.Background(), result(3)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_AppendRollsBackOnInsertFailure(t *testing.T) {
	store, mock := newMockGormStore(t, 2)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "generation_history"`).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	err := store.Append(context.Background(), result(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to append history entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListNewestFirst(t *testing.T) {
	store, mock := newMockGormStore(t, 10)

	rows := sqlmock.NewRows(historyColumns)
	for _, n := range []int{3, 2} {
		r := result(n)
		variations, err := json.Marshal(r.Variations)
		require.NoError(t, err)
		rows.AddRow(r.ID, r.Instruction, r.Model, r.Provider, r.CreatedAt, string(variations), time.Now())
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "generation_history" ORDER BY created_at_ms DESC LIMIT`)).
		WillReturnRows(rows)

	got, err := store.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"result-3", "result-2"}, ids(got))
	assert.Equal(t, int64(1700000000003), got[0].CreatedAt)
	require.Len(t, got[0].Variations, 1)
	assert.Equal(t, "<div>x</div>", got[0].Variations[0].HTMLCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListWithoutLimit(t *testing.T) {
	store, mock := newMockGormStore(t, 10)

	mock.ExpectQuery(`SELECT \* FROM "generation_history" ORDER BY created_at_ms DESC$`).
		WillReturnRows(sqlmock.NewRows(historyColumns))

	got, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListCorruptRow(t *testing.T) {
	store, mock := newMockGormStore(t, 10)

	mock.ExpectQuery(`SELECT \* FROM "generation_history"`).
		WillReturnRows(sqlmock.NewRows(historyColumns).
			AddRow("result-1", "i", "m", "OpenAI", int64(1), "not json", time.Now()))

	_, err := store.List(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "result-1")
}

func TestGormStore_ClearDeletesEverything(t *testing.T) {
	store, mock := newMockGormStore(t, 10)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "generation_history"$`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	require.NoError(t, store.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
