package validate

import (
	"github.com/ShiraazMoollatjie/goluhn"
)

// IsLuhn reports whether s passes the Luhn check. Membership card numbers
// carry a Luhn check digit.
func IsLuhn(s string) bool {
	err := goluhn.Validate(s)
	return err == nil
}
