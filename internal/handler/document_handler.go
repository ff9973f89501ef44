package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/service"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

type documentService interface {
	Upload(ctx context.Context, meta models.DocumentUpload, content io.ReadSeeker) (*models.Document, error)
	List(ctx context.Context, ownerType, ownerID string) ([]models.Document, error)
	Delete(ctx context.Context, id string) error
	Link(ctx context.Context, id string) (*models.DocumentLink, error)
	Download(ctx context.Context, token string) (*service.DocumentDownload, error)
}

// DocumentHandler manages scanned licences, permits and certificates.
type DocumentHandler struct {
	documents documentService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(documents documentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// UploadForDriver godoc
// @Summary Upload a driver document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Driver ID"
// @Param documentType formData string true "Licence, permit..."
// @Param expiryDate formData string false "YYYY-MM-DD"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Router /drivers/{id}/documents [post]
func (h *DocumentHandler) UploadForDriver(c *gin.Context) {
	h.upload(c, models.DocumentOwnerDriver)
}

// UploadForBus godoc
// @Summary Upload a bus document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Bus ID"
// @Param documentType formData string true "Insurance, fitness certificate..."
// @Param expiryDate formData string false "YYYY-MM-DD"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Router /fleet/buses/{id}/documents [post]
func (h *DocumentHandler) UploadForBus(c *gin.Context) {
	h.upload(c, models.DocumentOwnerBus)
}

func (h *DocumentHandler) upload(c *gin.Context, ownerType string) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	expiry, err := parseDateParam(c.PostForm("expiryDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		if readErr != nil {
			response.Error(c, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file"))
			return
		}
		reader = bytes.NewReader(buf)
	}

	meta := models.DocumentUpload{
		OwnerType:    ownerType,
		OwnerID:      c.Param("id"),
		DocumentType: strings.TrimSpace(c.PostForm("documentType")),
		FileName:     fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		SizeBytes:    fileHeader.Size,
		ExpiryDate:   expiry,
	}
	if claims := claimsFromContext(c); claims != nil {
		meta.UploadedBy = &claims.UserID
	}
	doc, err := h.documents.Upload(c.Request.Context(), meta, reader)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// ListForDriver godoc
// @Summary List driver documents
// @Tags Documents
// @Produce json
// @Param id path string true "Driver ID"
// @Success 200 {object} response.Envelope
// @Router /drivers/{id}/documents [get]
func (h *DocumentHandler) ListForDriver(c *gin.Context) {
	h.list(c, models.DocumentOwnerDriver)
}

// ListForBus godoc
// @Summary List bus documents
// @Tags Documents
// @Produce json
// @Param id path string true "Bus ID"
// @Success 200 {object} response.Envelope
// @Router /fleet/buses/{id}/documents [get]
func (h *DocumentHandler) ListForBus(c *gin.Context) {
	h.list(c, models.DocumentOwnerBus)
}

func (h *DocumentHandler) list(c *gin.Context, ownerType string) {
	docs, err := h.documents.List(c.Request.Context(), ownerType, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// Delete godoc
// @Summary Delete a document
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Document deleted successfully")
}

// URL godoc
// @Summary Signed, expiring download link for a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/url [get]
func (h *DocumentHandler) URL(c *gin.Context) {
	link, err := h.documents.Link(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Download godoc
// @Summary Download a document with a signed token
// @Tags Documents
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /documents/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.documents.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Header("Content-Length", strconv.FormatInt(result.Size, 10))
	c.DataFromReader(http.StatusOK, result.Size, result.MimeType, result.File, nil)
}
