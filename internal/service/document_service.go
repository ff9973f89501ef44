package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/storage"
	"github.com/noah-isme/bus-fleet-api/pkg/validation"
)

type documentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	ListByOwner(ctx context.Context, ownerType, ownerID string) ([]models.Document, error)
	FindByID(ctx context.Context, id string) (*models.Document, error)
	Delete(ctx context.Context, id string) error
}

type documentFileStorage interface {
	Save(key string, r io.Reader) (int64, error)
	Open(key string) (*os.File, error)
	Delete(key string) error
}

type documentSigner interface {
	Sign(documentID, key string) (string, time.Time, error)
	Verify(token string) (*storage.DownloadGrant, error)
}

type driverReader interface {
	FindByID(ctx context.Context, id string) (*models.Driver, error)
}

// DocumentDownload is an opened document ready to stream.
type DocumentDownload struct {
	File     *os.File
	FileName string
	MimeType string
	Size     int64
}

// DocumentConfig holds upload limits and the public prefix of download links.
type DocumentConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	APIPrefix    string
}

// DocumentService stores driver and bus documents and issues signed download links.
type DocumentService struct {
	repo      documentRepository
	drivers   driverReader
	buses     busReader
	storage   documentFileStorage
	signer    documentSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       DocumentConfig
	mimeSet   map[string]struct{}
}

// NewDocumentService constructs the document service.
func NewDocumentService(repo documentRepository, drivers driverReader, buses busReader, store documentFileStorage, signer documentSigner, validate *validator.Validate, logger *zap.Logger, cfg DocumentConfig) *DocumentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"application/pdf", "image/jpeg", "image/png"}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &DocumentService{
		repo:      repo,
		drivers:   drivers,
		buses:     buses,
		storage:   store,
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		mimeSet:   mimeSet,
	}
}

// Upload stores a document for a driver or bus.
func (s *DocumentService) Upload(ctx context.Context, meta models.DocumentUpload, content io.ReadSeeker) (*models.Document, error) {
	if content == nil || meta.SizeBytes <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if meta.SizeBytes > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	mimeType, err := detectMime(content, meta.MimeType)
	if err != nil {
		return nil, err
	}
	meta.MimeType = mimeType
	if err := s.validator.Struct(meta); err != nil {
		return nil, validation.AsAppError(err, "invalid document upload")
	}
	if _, allowed := s.mimeSet[strings.ToLower(mimeType)]; !allowed {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mime type not allowed")
	}
	if err := s.ensureOwner(ctx, meta.OwnerType, meta.OwnerID); err != nil {
		return nil, err
	}

	key := storage.ObjectKey(meta.OwnerType, meta.OwnerID, meta.FileName)
	written, err := s.storage.Save(key, io.LimitReader(content, s.cfg.MaxFileSize+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}
	if written > s.cfg.MaxFileSize {
		_ = s.storage.Delete(key)
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}

	doc := &models.Document{
		OwnerType:    meta.OwnerType,
		OwnerID:      meta.OwnerID,
		DocumentType: strings.TrimSpace(meta.DocumentType),
		FileName:     meta.FileName,
		StorageKey:   key,
		MimeType:     mimeType,
		SizeBytes:    written,
		ExpiryDate:   meta.ExpiryDate,
		UploadedBy:   meta.UploadedBy,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		_ = s.storage.Delete(key)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save document metadata")
	}
	s.logger.Info("document uploaded", zap.String("document_id", doc.ID), zap.String("owner_type", doc.OwnerType), zap.String("owner_id", doc.OwnerID))
	return doc, nil
}

// List returns the documents of one driver or bus.
func (s *DocumentService) List(ctx context.Context, ownerType, ownerID string) ([]models.Document, error) {
	if err := s.ensureOwner(ctx, ownerType, ownerID); err != nil {
		return nil, err
	}
	docs, err := s.repo.ListByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

// Delete removes a document record and its file.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	if err := s.storage.Delete(doc.StorageKey); err != nil {
		s.logger.Warn("document file not removed", zap.String("document_id", id), zap.Error(err))
	}
	return nil
}

// Link issues a signed, expiring download URL.
func (s *DocumentService) Link(ctx context.Context, id string) (*models.DocumentLink, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Sign(doc.ID, doc.StorageKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	base := strings.TrimRight(s.cfg.APIPrefix, "/")
	return &models.DocumentLink{
		URL:       fmt.Sprintf("%s/documents/download?token=%s", base, url.QueryEscape(token)),
		ExpiresAt: expiresAt,
	}, nil
}

// Download verifies a token and opens the document it grants.
func (s *DocumentService) Download(ctx context.Context, token string) (*DocumentDownload, error) {
	grant, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	doc, err := s.find(ctx, grant.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.StorageKey != grant.Key {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.storage.Open(doc.StorageKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open document")
	}
	return &DocumentDownload{File: file, FileName: doc.FileName, MimeType: doc.MimeType, Size: doc.SizeBytes}, nil
}

func (s *DocumentService) find(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

func (s *DocumentService) ensureOwner(ctx context.Context, ownerType, ownerID string) error {
	var err error
	var label string
	switch ownerType {
	case models.DocumentOwnerDriver:
		label = "Driver"
		_, err = s.drivers.FindByID(ctx, ownerID)
	case models.DocumentOwnerBus:
		label = "Bus"
		_, err = s.buses.FindByID(ctx, ownerID)
	default:
		return appErrors.Clone(appErrors.ErrBadRequest, "unknown document owner")
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, label+" not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document owner")
	}
	return nil
}

// detectMime sniffs the content type and rewinds the stream. The declared type
// is used when sniffing cannot tell.
func detectMime(content io.ReadSeeker, declared string) (string, error) {
	head := make([]byte, 512)
	n, err := content.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	sniffed := http.DetectContentType(head[:n])
	if idx := strings.Index(sniffed, ";"); idx >= 0 {
		sniffed = sniffed[:idx]
	}
	if sniffed == "application/octet-stream" && declared != "" {
		return declared, nil
	}
	return sniffed, nil
}
