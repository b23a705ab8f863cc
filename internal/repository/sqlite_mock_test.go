package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Repository{db: db}, mock
}

func TestGet_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT value FROM state").
		WithArgs("gameSettings").
		WillReturnError(errors.New("disk I/O error"))

	_, err := repo.Get(context.Background(), "gameSettings")
	if err == nil || err == ErrNotFound {
		t.Errorf("expected driver error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSet_ExecError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT OR REPLACE INTO state").
		WithArgs("reactionTimes", "[]").
		WillReturnError(errors.New("database is locked"))

	if err := repo.Set(context.Background(), "reactionTimes", "[]"); err == nil {
		t.Error("expected error from exec failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDelete_ExecError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM state").
		WithArgs("reactionTimes").
		WillReturnError(errors.New("readonly database"))

	if err := repo.Delete(context.Background(), "reactionTimes"); err == nil {
		t.Error("expected error from exec failure")
	}
}

func TestKeys_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT key FROM state").WillReturnError(errors.New("no such table"))

	if _, err := repo.Keys(context.Background()); err == nil {
		t.Error("expected error from query failure")
	}
}

func TestKeys_RowError(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"key"}).
		AddRow("championships").
		AddRow("gameSettings").
		RowError(1, errors.New("row corrupted"))
	mock.ExpectQuery("SELECT key FROM state").WillReturnRows(rows)

	if _, err := repo.Keys(context.Background()); err == nil {
		t.Error("expected row error to surface")
	}
}

func TestMigrate_Error(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS state").WillReturnError(errors.New("permission denied"))

	if err := repo.migrate(); err == nil {
		t.Error("expected migration error")
	}
}

func TestPing_Error(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}
	mock.ExpectPing().WillReturnError(errors.New("connection reset"))

	if err := repo.Ping(context.Background()); err == nil {
		t.Error("expected ping error")
	}
}
