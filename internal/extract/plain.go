package extract

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// extractPlain decodes a text memo. Notes saved by Windows editors often carry
// a byte order mark or are UTF-16; both are decoded to UTF-8. Any remaining
// invalid sequences become U+FFFD.
func extractPlain(content []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), content)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return strings.ToValidUTF8(string(decoded), "�"), nil
}
