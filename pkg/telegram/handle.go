package telegram

import (
	"encoding/binary"
	"fmt"

	"github.com/umputun/feedpush/pkg/domain"
)

// kindChat marks a handle holding a telegram chat id
const kindChat byte = 1

// handleSize is kind byte plus big-endian chat id
const handleSize = 9

// Pack makes a subscriber handle for a telegram chat
func Pack(chatID int64) domain.Subscriber {
	res := make([]byte, handleSize)
	res[0] = kindChat
	binary.BigEndian.PutUint64(res[1:], uint64(chatID))
	return res
}

// Unpack extracts the chat id from a subscriber handle made by Pack
func Unpack(sub domain.Subscriber) (int64, error) {
	if len(sub) != handleSize {
		return 0, fmt.Errorf("bad handle size %d", len(sub))
	}
	if sub[0] != kindChat {
		return 0, fmt.Errorf("unknown handle kind %d", sub[0])
	}
	return int64(binary.BigEndian.Uint64(sub[1:])), nil
}
