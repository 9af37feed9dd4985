package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/raglab/docqa/internal/core/domain"
)

func newRegistryWithMock(t *testing.T) (*Registry, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &Registry{db: db}, mock, func() { _ = db.Close() }
}

func TestPutUpsertsByLowercasedKey(t *testing.T) {
	registry, mock, done := newRegistryWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO ingestion_records").
		WithArgs("report.txt", "Report.TXT", "doc-1", "docs", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := registry.Put(context.Background(), "Report.TXT", "doc-1", "docs"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResolveFileNameReturnsSentinelOnNoRows(t *testing.T) {
	registry, mock, done := newRegistryWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT file_name FROM ingestion_records").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	name, err := registry.ResolveFileName(context.Background(), "missing")
	if err != nil {
		t.Fatalf("no rows must not be an error, got %v", err)
	}
	if name != domain.UnknownFileName {
		t.Fatalf("expected %q, got %q", domain.UnknownFileName, name)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRemoveAllForDeletesEveryMatch(t *testing.T) {
	registry, mock, done := newRegistryWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM ingestion_records").
		WithArgs("dup").
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := registry.RemoveAllFor(context.Background(), "dup"); err != nil {
		t.Fatalf("RemoveAllFor() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSnapshotScansOrderedRecords(t *testing.T) {
	registry, mock, done := newRegistryWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"file_name", "document_id", "index_name"}).
		AddRow("a.txt", "id-a", "docs").
		AddRow("b.txt", "id-b", "docs")
	mock.ExpectQuery("SELECT file_name, document_id, index_name FROM ingestion_records").
		WillReturnRows(rows)

	records, err := registry.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(records) != 2 || records[0].FileName != "a.txt" || records[1].DocumentID != "id-b" {
		t.Fatalf("unexpected snapshot %+v", records)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
