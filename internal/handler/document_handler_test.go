package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/service"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
)

type documentServiceStub struct {
	meta     models.DocumentUpload
	body     []byte
	download *service.DocumentDownload
}

func (s *documentServiceStub) Upload(ctx context.Context, meta models.DocumentUpload, content io.ReadSeeker) (*models.Document, error) {
	s.meta = meta
	s.body, _ = io.ReadAll(content)
	return &models.Document{ID: "doc-1", OwnerType: meta.OwnerType, OwnerID: meta.OwnerID, FileName: meta.FileName}, nil
}

func (s *documentServiceStub) List(ctx context.Context, ownerType, ownerID string) ([]models.Document, error) {
	return []models.Document{}, nil
}

func (s *documentServiceStub) Delete(ctx context.Context, id string) error { return nil }

func (s *documentServiceStub) Link(ctx context.Context, id string) (*models.DocumentLink, error) {
	return &models.DocumentLink{URL: "/api/documents/download?token=abc"}, nil
}

func (s *documentServiceStub) Download(ctx context.Context, token string) (*service.DocumentDownload, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	return s.download, nil
}

func TestDocumentHandlerUploadForBus(t *testing.T) {
	stub := &documentServiceStub{}
	h := NewDocumentHandler(stub)
	router := newTestRouter()
	router.POST("/fleet/buses/:id/documents", h.UploadForBus)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("documentType", "insurance"))
	require.NoError(t, writer.WriteField("expiryDate", "2026-03-31"))
	part, err := writer.CreateFormFile("file", "policy.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4 policy"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/fleet/buses/bus-1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.DocumentOwnerBus, stub.meta.OwnerType)
	assert.Equal(t, "bus-1", stub.meta.OwnerID)
	assert.Equal(t, "insurance", stub.meta.DocumentType)
	require.NotNil(t, stub.meta.ExpiryDate)
	assert.Equal(t, "2026-03-31", stub.meta.ExpiryDate.Format("2006-01-02"))
	require.NotNil(t, stub.meta.UploadedBy)
	assert.Equal(t, "u-1", *stub.meta.UploadedBy)
	assert.Equal(t, "%PDF-1.4 policy", string(stub.body))
}

func TestDocumentHandlerUploadRequiresFile(t *testing.T) {
	h := NewDocumentHandler(&documentServiceStub{})
	router := newTestRouter()
	router.POST("/drivers/:id/documents", h.UploadForDriver)

	rec := doJSON(router, http.MethodPost, "/drivers/d-1/documents", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licence.pdf")
	require.NoError(t, os.WriteFile(path, []byte("scan"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	stub := &documentServiceStub{download: &service.DocumentDownload{File: file, FileName: "licence.pdf", MimeType: "application/pdf", Size: 4}}
	h := NewDocumentHandler(stub)
	router := newTestRouter()
	router.GET("/documents/download", h.Download)

	rec := doJSON(router, http.MethodGet, "/documents/download?token=good", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "scan", rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "licence.pdf")

	rec = doJSON(router, http.MethodGet, "/documents/download?token=bad", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(router, http.MethodGet, "/documents/download", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
