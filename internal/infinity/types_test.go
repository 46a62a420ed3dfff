package infinity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint128Validate(t *testing.T) {
	valid := []Uint128{
		"0",
		"1",
		"1000000",
		"340282366920938463463374607431768211455", // 2^128 - 1
	}
	for _, v := range valid {
		assert.NoError(t, v.Validate(), "value %q", v)
	}

	invalid := []Uint128{
		"",
		"-1",
		"01",
		"1.5",
		"abc",
		"1e9",
		"340282366920938463463374607431768211456", // 2^128
	}
	for _, v := range invalid {
		assert.Error(t, v.Validate(), "value %q", v)
	}
}

func TestUint128BigInt(t *testing.T) {
	v, err := Uint128("123456789012345678901234567890").BigInt()
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567890", v.String())

	_, err = Uint128("not a number").BigInt()
	assert.Error(t, err)
}

func TestNewUint128FromBig(t *testing.T) {
	v, err := Uint128("99").BigInt()
	require.NoError(t, err)

	u, err := NewUint128FromBig(v)
	require.NoError(t, err)
	assert.Equal(t, Uint128("99"), u)

	_, err = NewUint128FromBig(v.Neg(v))
	assert.Error(t, err)
}

func TestDecimalValidate(t *testing.T) {
	assert.NoError(t, Decimal("0.02").Validate())
	assert.NoError(t, Decimal("2.5").Validate())
	assert.NoError(t, Decimal("0").Validate())

	assert.Error(t, Decimal("").Validate())
	assert.Error(t, Decimal("-0.01").Validate())
	assert.Error(t, Decimal("two percent").Validate())
}

func TestTimestampRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 123456789).UTC()
	ts := NewTimestamp(now)
	assert.Equal(t, Timestamp("1700000000123456789"), ts)

	back, err := ts.Time()
	require.NoError(t, err)
	assert.True(t, now.Equal(back))
}

func TestTimestampInvalid(t *testing.T) {
	for _, ts := range []Timestamp{"", "-5", "soon", "99999999999999999999999999"} {
		assert.Error(t, ts.Validate(), "timestamp %q", ts)
	}
}

func TestUnionKey(t *testing.T) {
	key, raw, err := UnionKey([]byte(`{"pools":{"query_options":null}}`))
	require.NoError(t, err)
	assert.Equal(t, "pools", key)
	assert.JSONEq(t, `{"query_options":null}`, string(raw))

	_, _, err = UnionKey([]byte(`{}`))
	assert.Error(t, err)

	_, _, err = UnionKey([]byte(`{"a":1,"b":2}`))
	assert.Error(t, err)

	_, _, err = UnionKey([]byte(`"pools"`))
	assert.Error(t, err)
}
