package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
)

func TestDocumentRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec("INSERT INTO documents").WillReturnResult(sqlmock.NewResult(1, 1))
	doc := &models.Document{OwnerType: models.DocumentOwnerDriver, OwnerID: "d1", DocumentType: "license", FileName: "dl.pdf", StorageKey: "drivers/d1/x-dl.pdf", MimeType: "application/pdf", SizeBytes: 10}
	require.NoError(t, repo.Create(context.Background(), doc))
	assert.NotEmpty(t, doc.ID)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM documents WHERE owner_type = $1 AND owner_id = $2 ORDER BY created_at DESC")).
		WithArgs(models.DocumentOwnerDriver, "d1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_type", "owner_id", "document_type", "file_name", "storage_key", "mime_type", "size_bytes", "expiry_date", "uploaded_by", "created_at"}).
			AddRow(doc.ID, "drivers", "d1", "license", "dl.pdf", "drivers/d1/x-dl.pdf", "application/pdf", 10, nil, nil, now))

	docs, err := repo.ListByOwner(context.Background(), models.DocumentOwnerDriver, "d1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "drivers/d1/x-dl.pdf", docs[0].StorageKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepositoryResolveOnlyPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	mock.ExpectExec("UPDATE reminders SET status").
		WithArgs("r1", models.ReminderCompleted, sqlmock.AnyArg(), models.ReminderPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Resolve(context.Background(), "r1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
