package service

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/storage"
)

type fakeDocumentRepo struct {
	docs      map[string]*models.Document
	createErr error
}

func (f *fakeDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	doc.ID = "0b7f4a8e-6d1c-4e2f-9a3b-5c6d7e8f9a0b"
	doc.CreatedAt = time.Now()
	clone := *doc
	f.docs[doc.ID] = &clone
	return nil
}

func (f *fakeDocumentRepo) ListByOwner(ctx context.Context, ownerType, ownerID string) ([]models.Document, error) {
	var out []models.Document
	for _, d := range f.docs {
		if d.OwnerType == ownerType && d.OwnerID == ownerID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepo) FindByID(ctx context.Context, id string) (*models.Document, error) {
	if d, ok := f.docs[id]; ok {
		clone := *d
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeDocumentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.docs, id)
	return nil
}

var pdfBody = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

func newDocumentFixture(t *testing.T, maxSize int64) (*DocumentService, *fakeDocumentRepo, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	repo := &fakeDocumentRepo{docs: map[string]*models.Document{}}
	drivers := &fakeDriverRepo{drivers: map[string]*models.Driver{driverUUID: {ID: driverUUID, Name: "Mohan"}}}
	svc := NewDocumentService(repo, drivers, testBuses(), store, storage.NewSignedURLSigner("secret", time.Minute), nil, zap.NewNop(), DocumentConfig{
		MaxFileSize: maxSize,
		APIPrefix:   "/api/v1",
	})
	return svc, repo, dir
}

func driverLicenceUpload(size int) models.DocumentUpload {
	return models.DocumentUpload{
		OwnerType:    models.DocumentOwnerDriver,
		OwnerID:      driverUUID,
		DocumentType: "licence",
		FileName:     "licence.pdf",
		MimeType:     "application/pdf",
		SizeBytes:    int64(size),
	}
}

func TestDocumentServiceUploadLinkDownload(t *testing.T) {
	svc, repo, _ := newDocumentFixture(t, 1024)

	doc, err := svc.Upload(context.Background(), driverLicenceUpload(len(pdfBody)), bytes.NewReader(pdfBody))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, int64(len(pdfBody)), doc.SizeBytes)
	assert.True(t, strings.HasPrefix(doc.StorageKey, "drivers/"+driverUUID+"/"))

	docs, err := svc.List(context.Background(), models.DocumentOwnerDriver, driverUUID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	link, err := svc.Link(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.URL, "/api/v1/documents/download?token="))

	parsed, err := url.Parse(link.URL)
	require.NoError(t, err)
	download, err := svc.Download(context.Background(), parsed.Query().Get("token"))
	require.NoError(t, err)
	defer download.File.Close()
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Equal(t, pdfBody, body)
	assert.Equal(t, "licence.pdf", download.FileName)

	require.NoError(t, svc.Delete(context.Background(), doc.ID))
	assert.Empty(t, repo.docs)
}

func TestDocumentServiceUploadRejections(t *testing.T) {
	svc, _, _ := newDocumentFixture(t, 16)

	_, err := svc.Upload(context.Background(), driverLicenceUpload(len(pdfBody)), bytes.NewReader(pdfBody))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	svc, _, _ = newDocumentFixture(t, 1024)
	text := []byte("just some notes")
	upload := driverLicenceUpload(len(text))
	upload.FileName = "notes.txt"
	_, err = svc.Upload(context.Background(), upload, bytes.NewReader(text))
	require.Error(t, err)
	assert.Equal(t, "mime type not allowed", appErrors.FromError(err).Message)

	upload = driverLicenceUpload(len(pdfBody))
	upload.OwnerID = "missing"
	_, err = svc.Upload(context.Background(), upload, bytes.NewReader(pdfBody))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "Driver not found", appErr.Message)
}

func TestDocumentServiceRemovesFileWhenMetadataFails(t *testing.T) {
	svc, repo, dir := newDocumentFixture(t, 1024)
	repo.createErr = assert.AnError

	upload := driverLicenceUpload(len(pdfBody))
	upload.OwnerType = models.DocumentOwnerBus
	upload.OwnerID = privateBusUUID
	_, err := svc.Upload(context.Background(), upload, bytes.NewReader(pdfBody))
	require.Error(t, err)

	assert.Empty(t, repo.docs)
	files := 0
	require.NoError(t, filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files++
		}
		return err
	}))
	assert.Zero(t, files)
}

func TestDocumentServiceDownloadRejectsBadToken(t *testing.T) {
	svc, _, _ := newDocumentFixture(t, 1024)

	_, err := svc.Download(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Link(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "Document not found", appErrors.FromError(err).Message)
}
