package terminal

import (
	"errors"
	"strconv"
	"strings"
)

// Protocol markers. The terminal announces MarkerReady before it will accept
// a balance write and confirms the write with MarkerDone; the service sends
// MarkerInsufficient when the card cannot cover the fee.
const (
	MarkerReady        = "READY"
	MarkerDone         = "DONE"
	MarkerInsufficient = "I"
)

var (
	ErrMalformedMessage = errors.New("malformed terminal message")
)

// BalanceMessage is one inbound "<plate>,<balance>" line.
type BalanceMessage struct {
	Plate   string
	Balance int64
}

// ParseBalanceMessage parses an inbound line. The balance field is cleaned of
// any non-digit characters before parsing; a line with the wrong field count
// or an empty numeric field is malformed and gets dropped by the caller.
func ParseBalanceMessage(line string) (BalanceMessage, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 2 {
		return BalanceMessage{}, ErrMalformedMessage
	}

	plate := strings.TrimSpace(parts[0])
	if plate == "" {
		return BalanceMessage{}, ErrMalformedMessage
	}

	var digits strings.Builder
	for _, c := range parts[1] {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	if digits.Len() == 0 {
		return BalanceMessage{}, ErrMalformedMessage
	}

	balance, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return BalanceMessage{}, ErrMalformedMessage
	}

	return BalanceMessage{Plate: plate, Balance: balance}, nil
}
