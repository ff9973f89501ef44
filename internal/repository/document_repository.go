package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bus-fleet-api/internal/models"
)

const documentColumns = `id, owner_type, owner_id, document_type, file_name, storage_key, mime_type, size_bytes, expiry_date, uploaded_by, created_at`

// DocumentRepository stores metadata of uploaded driver and bus documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts document metadata.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO documents (` + documentColumns + `)
VALUES (:id, :owner_type, :owner_id, :document_type, :file_name, :storage_key, :mime_type, :size_bytes, :expiry_date, :uploaded_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return wrapWriteErr("create document", err)
	}
	return nil
}

// ListByOwner returns an owner's documents newest first.
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerType, ownerID string) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE owner_type = $1 AND owner_id = $2 ORDER BY created_at DESC`
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, ownerType, ownerID); err != nil {
		return nil, wrapErr("list documents", err)
	}
	return docs, nil
}

// FindByID returns document metadata.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("find document", err)
	}
	return &doc, nil
}

// Delete removes document metadata.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete document", err)
	}
	return expectAffected(res, "delete document")
}

// ListExpiring returns documents whose expiry falls inside the window, named after their owner.
func (r *DocumentRepository) ListExpiring(ctx context.Context, from, until time.Time) ([]models.ExpiringItem, error) {
	const query = `SELECT d.id AS entity_id,
COALESCE(dr.name, b.registration_number, d.file_name) || ' ' || d.document_type AS entity_name,
'document' AS kind, d.expiry_date AS due_date
FROM documents d
LEFT JOIN drivers dr ON d.owner_type = 'drivers' AND dr.id = d.owner_id
LEFT JOIN buses b ON d.owner_type = 'buses' AND b.id = d.owner_id
WHERE d.expiry_date IS NOT NULL AND d.expiry_date >= $1 AND d.expiry_date <= $2`
	var items []models.ExpiringItem
	if err := r.db.SelectContext(ctx, &items, query, from, until); err != nil {
		return nil, wrapErr("list expiring documents", err)
	}
	return items, nil
}
