// Package infinity holds the scalar and envelope types shared by the
// Infinity pool and router contract bindings. Every shape here mirrors the
// JSON schema published by the contracts: field names, optionality and
// discriminants must match exactly, since the chain rejects malformed
// messages at the serialization boundary.
package infinity

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// maxUint128 = 2^128 - 1, the largest value the contract-side Uint128 holds.
var maxUint128 = func() *big.Int {
	v := new(big.Int).Lsh(big.NewInt(1), 128)
	return v.Sub(v, big.NewInt(1))
}()

// Uint128 is a 128-bit unsigned integer carried as a decimal string.
// Contract-side values routinely exceed uint64, so the string form is kept
// end to end and only parsed for local arithmetic.
type Uint128 string

// NewUint128 builds a Uint128 from a native uint64.
func NewUint128(v uint64) Uint128 {
	return Uint128(fmt.Sprintf("%d", v))
}

// NewUint128FromBig builds a Uint128 from a big.Int, rejecting values
// outside [0, 2^128).
func NewUint128FromBig(v *big.Int) (Uint128, error) {
	if v.Sign() < 0 || v.Cmp(maxUint128) > 0 {
		return "", fmt.Errorf("value %s out of uint128 range", v.String())
	}
	return Uint128(v.String()), nil
}

// Validate checks that the string is a plain decimal integer within range.
func (u Uint128) Validate() error {
	s := string(u)
	if s == "" {
		return fmt.Errorf("uint128 cannot be empty")
	}
	if len(s) > 1 && s[0] == '0' {
		return fmt.Errorf("uint128 %q has leading zeros", s)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return fmt.Errorf("uint128 %q is not a decimal integer", s)
	}
	if v.Cmp(maxUint128) > 0 {
		return fmt.Errorf("uint128 %q exceeds 2^128-1", s)
	}
	return nil
}

// BigInt parses the value for local arithmetic.
func (u Uint128) BigInt() (*big.Int, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	v, _ := new(big.Int).SetString(string(u), 10)
	return v, nil
}

// Decimal returns the value as an arbitrary-precision decimal.
func (u Uint128) Decimal() (decimal.Decimal, error) {
	if err := u.Validate(); err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(string(u))
}

// IsZero reports whether the value equals zero without full validation.
func (u Uint128) IsZero() bool {
	return u == "0" || u == ""
}

// Decimal is a contract-side fixed-point decimal (18 fractional digits)
// carried as a string, e.g. "0.02" for a 2% fee.
type Decimal string

// Validate checks the string parses as a non-negative decimal.
func (d Decimal) Validate() error {
	if d == "" {
		return fmt.Errorf("decimal cannot be empty")
	}
	v, err := decimal.NewFromString(string(d))
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", string(d), err)
	}
	if v.IsNegative() {
		return fmt.Errorf("decimal %q cannot be negative", string(d))
	}
	return nil
}

// Value parses the decimal for local arithmetic.
func (d Decimal) Value() (decimal.Decimal, error) {
	if err := d.Validate(); err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(string(d))
}

// Timestamp is a point in time carried as a decimal string of nanoseconds
// since the Unix epoch, matching the contract's Timestamp encoding.
type Timestamp string

// NewTimestamp converts a time.Time to the contract encoding.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(fmt.Sprintf("%d", t.UnixNano()))
}

// Time parses the timestamp back into a time.Time.
func (t Timestamp) Time() (time.Time, error) {
	if t == "" {
		return time.Time{}, fmt.Errorf("timestamp cannot be empty")
	}
	ns, ok := new(big.Int).SetString(string(t), 10)
	if !ok || ns.Sign() < 0 {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", string(t))
	}
	if !ns.IsInt64() {
		return time.Time{}, fmt.Errorf("timestamp %q out of range", string(t))
	}
	return time.Unix(0, ns.Int64()).UTC(), nil
}

// Validate checks the timestamp is a decimal nanosecond count.
func (t Timestamp) Validate() error {
	_, err := t.Time()
	return err
}

// QueryOptions is the pagination envelope used by list queries. The cursor
// type varies per query: pool ids paginate on uint64, quote queries on a
// (price, pool id) tuple.
type QueryOptions[T any] struct {
	StartAfter *T      `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
	Descending *bool   `json:"descending,omitempty"`
}

// Ptr is a small helper for building optional fields in message literals.
func Ptr[T any](v T) *T { return &v }

// UnionKey extracts the single variant key from a tagged-union JSON value.
// The contract dispatches on exactly one top-level key, so zero or multiple
// keys are malformed.
func UnionKey(data []byte) (string, json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return "", nil, fmt.Errorf("invalid union value: %w", err)
	}
	if len(m) != 1 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		return "", nil, fmt.Errorf("union value must have exactly one key, got %d (%s)",
			len(m), strings.Join(keys, ","))
	}
	for k, v := range m {
		return k, v, nil
	}
	return "", nil, fmt.Errorf("unreachable")
}
