package encrypt

import (
	"strings"
	"unicode"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
)

// MaskLastChars replaces the trailing digits ASCII-digit characters of s
// with '*':
//   - if s is no longer than digits, every character is replaced;
//   - if s doesn't contain digits ASCII digits at all, the last digits
//     characters (of whatever kind) are replaced instead;
//   - otherwise the last digits ASCII-digit characters, scanning from the
//     end, are each replaced in place, non-digit characters left alone.
//
// Only 3 and 6 are supported digit counts, matching the two declared
// mask-last factor encryption methods.
func MaskLastChars(s string, digits int) (string, error) {
	if digits != 3 && digits != 6 {
		return "", pipeflowerr.Newf(pipeflowerr.CodeInfrastructure, "mask-last-chars digit count %d is not supported, only 3 or 6", digits)
	}

	runes := []rune(s)
	length := len(runes)
	if length <= digits {
		return strings.Repeat("*", length), nil
	}

	decimalCount := 0
	for _, r := range runes {
		if unicode.IsDigit(r) && r <= unicode.MaxASCII {
			decimalCount++
		}
	}

	if decimalCount < digits {
		kept := string(runes[:length-digits])
		return kept + strings.Repeat("*", digits), nil
	}

	remaining := digits
	out := make([]rune, length)
	for i := length - 1; i >= 0; i-- {
		r := runes[i]
		if remaining > 0 && unicode.IsDigit(r) && r <= unicode.MaxASCII {
			out[i] = '*'
			remaining--
		} else {
			out[i] = r
		}
	}
	return string(out), nil
}
