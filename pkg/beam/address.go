package beam

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Address is a base58check chain address. User addresses carry the "AU"
// prefix, smart contract addresses "AS".
type Address string

const (
	userPrefix     = "AU"
	contractPrefix = "AS"
)

// Validate checks the prefix and that the payload is well-formed base58.
func (a Address) Validate() error {
	s := string(a)
	if len(s) < 4 {
		return fmt.Errorf("address %q too short", s)
	}
	if !strings.HasPrefix(s, userPrefix) && !strings.HasPrefix(s, contractPrefix) {
		return fmt.Errorf("address %q must start with %s or %s", s, userPrefix, contractPrefix)
	}
	if _, err := base58.Decode(s[2:]); err != nil {
		return fmt.Errorf("address %q is not base58: %w", s, err)
	}
	return nil
}

// IsContract reports whether the address denotes a smart contract.
func (a Address) IsContract() bool {
	return strings.HasPrefix(string(a), contractPrefix)
}

func (a Address) String() string {
	return string(a)
}
