package port

import "context"

// TextExtractor turns a document payload into plain text. It never fails:
// unreadable input yields "".
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) string
}
