package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReceiptNumber(t *testing.T) {
	assert.Equal(t, "RCPT-2025-00001", ReceiptNumber("", 2025, 1))
	assert.Equal(t, "BUS-2024-00420", ReceiptNumber("BUS", 2024, 420))
	assert.Equal(t, "RCPT-2025-123456", ReceiptNumber("RCPT", 2025, 123456))
}
