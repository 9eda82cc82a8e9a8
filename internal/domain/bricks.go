package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/samber/lo"
)

const (
	MaxTags      = 10
	MaxTagLength = 32
)

// NormalizeTags trims, drops empty entries and deduplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	trimmed := lo.Map(tags, func(t string, _ int) string {
		return strings.TrimSpace(t)
	})
	return lo.Uniq(lo.Compact(trimmed))
}

// ValidateTags checks tags against the on-chain bytes32 encoding limits.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTags {
		return &ValidationError{Field: "tags", Reason: fmt.Sprintf("must not exceed %d entries", MaxTags)}
	}
	for _, t := range tags {
		if len(t) > MaxTagLength {
			return &ValidationError{Field: "tags", Reason: fmt.Sprintf("%q is longer than %d bytes", t, MaxTagLength)}
		}
	}
	return nil
}

// ValidateNewBrick checks the fields the contract rejects before sending a transaction.
func ValidateNewBrick(title string, value *big.Int, tags []string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if value == nil || value.Sign() <= 0 {
		return &ValidationError{Field: "value", Reason: "must be positive"}
	}
	return ValidateTags(tags)
}

var weiPerEther = new(big.Rat).SetInt(big.NewInt(1_000_000_000_000_000_000))
var weiPerGwei = new(big.Rat).SetInt(big.NewInt(1_000_000_000))

// ParseValue parses an amount such as "1", "0.5eth", "20gwei" or "1000wei" into wei.
// A bare number is read as ether.
func ParseValue(s string) (*big.Int, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	unit := weiPerEther
	switch {
	case strings.HasSuffix(raw, "gwei"):
		raw, unit = strings.TrimSuffix(raw, "gwei"), weiPerGwei
	case strings.HasSuffix(raw, "wei"):
		raw, unit = strings.TrimSuffix(raw, "wei"), new(big.Rat).SetInt64(1)
	case strings.HasSuffix(raw, "ether"):
		raw = strings.TrimSuffix(raw, "ether")
	case strings.HasSuffix(raw, "eth"):
		raw = strings.TrimSuffix(raw, "eth")
	}
	raw = strings.TrimSpace(raw)

	amount, ok := new(big.Rat).SetString(raw)
	if !ok || raw == "" {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q: negative", s)
	}
	amount.Mul(amount, unit)
	if !amount.IsInt() {
		return nil, fmt.Errorf("invalid amount %q: fractional wei", s)
	}
	return new(big.Int).Set(amount.Num()), nil
}

// FormatEther renders wei as a decimal ether string without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	s := new(big.Rat).Quo(new(big.Rat).SetInt(wei), weiPerEther).FloatString(18)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
