package validation

import (
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
)

const c32Chars = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ValidateAddress validates a Stacks address format. The checksum is not verified.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if len(addr) < 5 || len(addr) > 41 {
		return fmt.Errorf("invalid address length: %d", len(addr))
	}
	switch addr[:2] {
	case "SP", "ST", "SM", "SN":
	default:
		return fmt.Errorf("invalid address prefix %q", addr[:2])
	}
	for _, r := range addr[2:] {
		if !strings.ContainsRune(c32Chars, r) {
			return fmt.Errorf("invalid address character %q", r)
		}
	}
	return nil
}

// NormalizeAddress upper-cases an address and trims surrounding space.
func NormalizeAddress(addr string) string {
	return strings.ToUpper(strings.TrimSpace(addr))
}

// ValidateAndNormalizeAddress validates an address and returns its normalized form
func ValidateAndNormalizeAddress(addr string) (string, error) {
	normalized := NormalizeAddress(addr)
	if err := ValidateAddress(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// ValidateTxID checks a transaction id is 0x followed by 64 hex characters.
func ValidateTxID(id string) error {
	if !strings.HasPrefix(id, "0x") {
		return fmt.Errorf("transaction id must start with 0x")
	}
	body := id[2:]
	if len(body) != 64 {
		return fmt.Errorf("invalid transaction id length: expected 64 characters (without 0x), got %d", len(body))
	}
	if _, err := hex.DecodeString(body); err != nil {
		return fmt.Errorf("invalid hex transaction id: %w", err)
	}
	return nil
}

// NormalizeTxID lower-cases a transaction id and adds the 0x prefix when missing.
func NormalizeTxID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if !strings.HasPrefix(id, "0x") {
		id = "0x" + id
	}
	return id
}

// ValidateEmail accepts a bare address such as user@example.com.
func ValidateEmail(email string) error {
	parsed, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	if parsed.Address != email {
		return fmt.Errorf("invalid email: %q", email)
	}
	return nil
}
