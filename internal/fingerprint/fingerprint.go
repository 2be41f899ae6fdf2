// Package fingerprint gives arrangements a short printable identifier so an
// operator can refer to one in logs and the commit archive.
// Fingerprints follow the format: seat:<base58(arrangement + checksum)>
package fingerprint

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"regexp"

	"github.com/mr-tron/base58"

	"github.com/seatwheel/seatwheel/internal/seating"
)

const checksumLen = 4

var fingerprintRegex = regexp.MustCompile(`^seat:([1-9A-HJ-NP-Za-km-z]+)$`)

// Generate encodes an arrangement as seat:<base58(seats + sha256(seats)[0:4])>.
func Generate(a seating.Arrangement) string {
	payload := make([]byte, seating.SeatCount+checksumLen)
	for i, person := range a {
		payload[i] = byte(person)
	}
	hash := sha256.Sum256(payload[:seating.SeatCount])
	copy(payload[seating.SeatCount:], hash[:checksumLen])
	return "seat:" + base58.Encode(payload)
}

// Validate parses a fingerprint and returns the arrangement it encodes.
// It fails when the format is wrong, the checksum does not match, or the
// decoded seats are not a valid arrangement.
func Validate(fp string) (seating.Arrangement, error) {
	encoded, err := Parse(fp)
	if err != nil {
		return seating.Arrangement{}, err
	}

	decoded, err := base58.Decode(encoded)
	if err != nil {
		return seating.Arrangement{}, fmt.Errorf("invalid base58 in fingerprint: %w", err)
	}
	if len(decoded) != seating.SeatCount+checksumLen {
		return seating.Arrangement{}, fmt.Errorf("invalid fingerprint payload length: expected %d, got %d",
			seating.SeatCount+checksumLen, len(decoded))
	}

	hash := sha256.Sum256(decoded[:seating.SeatCount])
	for i := range checksumLen {
		if decoded[seating.SeatCount+i] != hash[i] {
			return seating.Arrangement{}, errors.New("fingerprint checksum mismatch")
		}
	}

	var a seating.Arrangement
	for i := range a {
		a[i] = int(decoded[i])
	}
	if err := a.Validate(); err != nil {
		return seating.Arrangement{}, err
	}
	return a, nil
}

// Parse extracts the base58 payload from a fingerprint string. It checks the
// format but not the checksum.
func Parse(fp string) (string, error) {
	matches := fingerprintRegex.FindStringSubmatch(fp)
	if matches == nil {
		return "", fmt.Errorf("invalid fingerprint format: %q", fp)
	}
	return matches[1], nil
}
