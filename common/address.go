package common

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
)

// AddressLength is the length of a participant address in bytes.
const AddressLength = 20

// Address identifies a network participant. It is an opaque fixed-length
// identifier; the service never interprets its contents.
type Address [AddressLength]byte

// NewAddressFromString parses a hex-encoded address with an optional "0x" prefix.
func NewAddressFromString(s string) (Address, error) {
	s = strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, errors.Wrap(err, "address is not valid hex")
	}
	if len(raw) != AddressLength {
		return Address{}, errors.Errorf("address must be %d bytes, got %d", AddressLength, len(raw))
	}
	var addr Address
	copy(addr[:], raw)
	return addr, nil
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler so addresses render as hex in JSON.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	addr, err := NewAddressFromString(string(text))
	if err != nil {
		return errors.WithStack(err)
	}
	*a = addr
	return nil
}

// ChannelID identifies a payment channel. Both directional edges of one
// channel share the same id.
type ChannelID uint64
