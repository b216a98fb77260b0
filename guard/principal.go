package guard

import (
	"errors"
	"fmt"
	"github.com/ethereum/go-ethereum/common"
	"strings"
)

var ErrInvalidPrincipal = errors.New("invalid principal")

// Principal identifies an acting party by its address. The zero value is not a
// valid principal; build one with ParsePrincipal.
type Principal string

// ParsePrincipal accepts a hex address with or without the 0x prefix and in any
// letter case, and returns its canonical lower-case form.
func ParsePrincipal(raw string) (Principal, error) {
	trimmed := strings.TrimSpace(raw)
	if !common.IsHexAddress(trimmed) {
		return "", fmt.Errorf("%w: %q is not an address", ErrInvalidPrincipal, raw)
	}
	return Principal(strings.ToLower(common.HexToAddress(trimmed).Hex())), nil
}

// MustParsePrincipal is ParsePrincipal for constants and tests.
func MustParsePrincipal(raw string) Principal {
	p, err := ParsePrincipal(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Principal) String() string {
	return string(p)
}

// Checksum renders the principal in EIP-55 mixed-case form for display.
func (p Principal) Checksum() string {
	return common.HexToAddress(string(p)).Hex()
}
