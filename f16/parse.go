package f16

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBits parses a bit-pattern written as "0x3c00", "3c00" (hex without
// prefix, when it contains a hex letter) or plain decimal "15360".
func ParseBits(s string) (Bits, error) {
	s = strings.TrimSpace(s)

	base := 10
	digits := s
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		base, digits = 16, s[2:]
	case strings.ContainsAny(s, "abcdefABCDEF"):
		base = 16
	}

	v, err := strconv.ParseUint(digits, base, 16)
	if err != nil {
		return 0, fmt.Errorf("f16: invalid bit-pattern %q: %w", s, err)
	}
	return Bits(v), nil
}
