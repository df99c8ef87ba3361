package utils

import "crypto/rand"

// ticketAlphabet is the character set for redemption codes: uppercase
// letters and digits only, so codes survive being read aloud or typed
// from a printed ticket.
const ticketAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TicketCodeLen is the fixed length of every redemption code.
const TicketCodeLen = 8

// NewTicketCode returns a random 8-character uppercase alphanumeric
// redemption code.  Codes are not guessable tokens; uniqueness is
// enforced by the tickets.code unique index and the caller retries on
// a duplicate-key insert.
func NewTicketCode() (string, error) {
	buf := make([]byte, TicketCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, TicketCodeLen)
	for i, b := range buf {
		out[i] = ticketAlphabet[int(b)%len(ticketAlphabet)]
	}
	return string(out), nil
}
