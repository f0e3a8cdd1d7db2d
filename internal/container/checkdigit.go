package container

import (
	"fmt"

	"github.com/ipter/container-ocr-service/internal/models"
)

// letterValues skips 11, 22 and 33
var letterValues = map[byte]int{
	'A': 10, 'B': 12, 'C': 13, 'D': 14, 'E': 15, 'F': 16, 'G': 17,
	'H': 18, 'I': 19, 'J': 20, 'K': 21, 'L': 23, 'M': 24, 'N': 25,
	'O': 26, 'P': 27, 'Q': 28, 'R': 29, 'S': 30, 'T': 31, 'U': 32,
	'V': 34, 'W': 35, 'X': 36, 'Y': 37, 'Z': 38,
}

// CheckDigit computes the ISO 6346 check digit for the first ten characters
// of a container identifier (owner code, category and serial number).
func CheckDigit(prefix string) (int, error) {
	if len(prefix) != 10 {
		return 0, fmt.Errorf("identifier prefix must be 10 characters, got %d", len(prefix))
	}

	sum := 0
	weight := 1
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'a' && c <= 'z':
			v = letterValues[c-'a'+'A']
		case c >= 'A' && c <= 'Z':
			v = letterValues[c]
		default:
			return 0, fmt.Errorf("invalid character %q at position %d", c, i)
		}
		sum += v * weight
		weight *= 2
	}
	return sum % 11 % 10, nil
}

// Verify checks an identifier against its check digit. Identifiers without
// a check digit stay pending.
func Verify(id string) string {
	cleaned := Clean(id)
	if len(cleaned) != 11 || !shape.MatchString(cleaned) {
		return models.ValidationPending
	}

	want, err := CheckDigit(cleaned[:10])
	if err != nil {
		return models.ValidationPending
	}
	if int(cleaned[10]-'0') == want {
		return models.ValidationChecksumVerified
	}
	return models.ValidationChecksumRejected
}
