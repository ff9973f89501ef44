package ledger

import "fmt"

// DefaultReceiptPrefix starts every receipt number unless configured otherwise.
const DefaultReceiptPrefix = "RCPT"

// ReceiptNumber formats a receipt as PREFIX-YEAR-NNNNN.
func ReceiptNumber(prefix string, year int, seq int64) string {
	if prefix == "" {
		prefix = DefaultReceiptPrefix
	}
	return fmt.Sprintf("%s-%d-%05d", prefix, year, seq)
}
