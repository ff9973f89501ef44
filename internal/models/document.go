package models

import "time"

// Document owner types.
const (
	DocumentOwnerDriver = "drivers"
	DocumentOwnerBus    = "buses"
)

// Document is an uploaded scan (licence, insurance, permit...) for a driver or bus.
type Document struct {
	ID           string     `db:"id" json:"id"`
	OwnerType    string     `db:"owner_type" json:"ownerType"`
	OwnerID      string     `db:"owner_id" json:"ownerId"`
	DocumentType string     `db:"document_type" json:"documentType"`
	FileName     string     `db:"file_name" json:"fileName"`
	StorageKey   string     `db:"storage_key" json:"-"`
	MimeType     string     `db:"mime_type" json:"mimeType"`
	SizeBytes    int64      `db:"size_bytes" json:"sizeBytes"`
	ExpiryDate   *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`
	UploadedBy   *string    `db:"uploaded_by" json:"uploadedBy,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// DocumentUpload carries the metadata of a multipart upload.
type DocumentUpload struct {
	OwnerType    string
	OwnerID      string
	DocumentType string     `validate:"required,max=64"`
	FileName     string     `validate:"required"`
	MimeType     string     `validate:"required"`
	SizeBytes    int64      `validate:"gt=0"`
	ExpiryDate   *time.Time
	UploadedBy   *string
}

// DocumentLink is a signed, expiring download URL.
type DocumentLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
