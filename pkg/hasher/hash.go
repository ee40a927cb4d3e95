package hasher

import (
	"crypto/sha256"
	"encoding/hex"
)

// SumBytes returns the hex SHA-256 of b.
func SumBytes(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// ETag returns a strong HTTP entity tag for the payload.
func ETag(b []byte) string {
	return `"` + SumBytes(b)[:32] + `"`
}

// MatchETag reports whether an If-None-Match header value matches tag.
func MatchETag(header, tag string) bool {
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	start := 0
	for i := 0; i <= len(header); i++ {
		if i == len(header) || header[i] == ',' {
			candidate := trim(header[start:i])
			if len(candidate) > 2 && candidate[:2] == "W/" {
				candidate = candidate[2:]
			}
			if candidate == tag {
				return true
			}
			start = i + 1
		}
	}
	return false
}

func trim(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}
