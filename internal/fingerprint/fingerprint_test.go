package fingerprint_test

import (
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatwheel/seatwheel/internal/fingerprint"
	"github.com/seatwheel/seatwheel/internal/seating"
)

func reversed() seating.Arrangement {
	var a seating.Arrangement
	for i := range a {
		a[i] = seating.SeatCount - 1 - i
	}
	return a
}

func TestGenerate_IsStableAndDistinct(t *testing.T) {
	id := fingerprint.Generate(seating.Identity())
	assert.True(t, strings.HasPrefix(id, "seat:"))
	assert.Equal(t, id, fingerprint.Generate(seating.Identity()))
	assert.NotEqual(t, id, fingerprint.Generate(reversed()))
}

func TestValidate_RoundTrip(t *testing.T) {
	for _, a := range []seating.Arrangement{seating.Identity(), reversed()} {
		got, err := fingerprint.Validate(fingerprint.Generate(a))
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
}

func TestValidate_RejectsTampered(t *testing.T) {
	fp := fingerprint.Generate(seating.Identity())
	payload, err := fingerprint.Parse(fp)
	require.NoError(t, err)

	raw, err := base58.Decode(payload)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	tampered := "seat:" + base58.Encode(raw)

	_, err = fingerprint.Validate(tampered)
	assert.ErrorContains(t, err, "checksum mismatch")
}

func TestValidate_RejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"seat:",
		"seat:0OIl",
		"not-a-fingerprint",
		"seat:" + base58.Encode([]byte{1, 2, 3}),
	}
	for _, fp := range cases {
		_, err := fingerprint.Validate(fp)
		assert.Error(t, err, "fingerprint %q", fp)
	}
}
