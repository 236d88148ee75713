package certificate

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// sanitize keeps [A-Za-z0-9_-], turning whitespace runs into underscores and
// dropping everything else, so names survive any filesystem or header.
func sanitize(s string) string {
	var b strings.Builder
	pendingUnderscore := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingUnderscore = b.Len() > 0
		case r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			if pendingUnderscore {
				b.WriteByte('_')
				pendingUnderscore = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// shortToken keeps the first 8 and last 6 characters of a token. Used both
// in filenames (joined bare) and on the certificate itself (joined with an
// ellipsis by displayToken).
func shortToken(token string) (head, tail string) {
	if len(token) <= 14 {
		return token, ""
	}
	return token[:8], token[len(token)-6:]
}

func displayToken(token string) string {
	head, tail := shortToken(token)
	if tail == "" {
		return head
	}
	return head + "…" + tail
}

// certificateFileName builds the synthesized certificate name:
// PREFIX_name_externalID_timestamp_token.pdf, every segment sanitized.
func certificateFileName(prefix, signerName, signerExternalID, token string, at time.Time) string {
	head, tail := shortToken(token)
	return fmt.Sprintf("%s_%s_%s_%s_%s.pdf",
		prefix,
		sanitize(signerName),
		sanitize(signerExternalID),
		at.Format("20060102_150405"),
		sanitize(head+tail),
	)
}

// stampedFileName derives the stamped attachment name from the original:
// base-signed-token.ext.
func stampedFileName(original, token string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(original, ext)
	head, tail := shortToken(token)
	if ext == "" {
		ext = ".pdf"
	}
	return fmt.Sprintf("%s-signed-%s%s", sanitize(base), sanitize(head+tail), ext)
}
