package domain

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
)

// Subscriber is an opaque handle of a message recipient.
// The core never looks inside, packing and unpacking belong to the messaging adapter.
type Subscriber []byte

// ParseSubscriber decodes the textual form produced by Subscriber.String
func ParseSubscriber(s string) (Subscriber, error) {
	if s == "" {
		return nil, errors.New("empty subscriber")
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode subscriber %q: %w", s, err)
	}
	return Subscriber(b), nil
}

// String returns url-safe base64 of the handle
func (s Subscriber) String() string {
	return base64.RawURLEncoding.EncodeToString(s)
}

// Equal compares two handles byte by byte
func (s Subscriber) Equal(other Subscriber) bool {
	return bytes.Equal(s, other)
}
