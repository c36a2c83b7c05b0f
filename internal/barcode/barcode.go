// Package barcode generates product codes and renders printable labels.
package barcode

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Length is the number of digits of a generated code (EAN-13 size).
const Length = 13

// MaxAttempts bounds how many candidates are tried before giving up.
const MaxAttempts = 5

// Generator produces candidate barcodes. The first candidate comes from the
// clock, later ones are random.
type Generator struct {
	now    func() time.Time
	digits func() int
}

// NewGenerator returns a Generator using the wall clock.
func NewGenerator() *Generator {
	return &Generator{
		now:    time.Now,
		digits: func() int { return rand.IntN(10) },
	}
}

// Candidate returns the code to try on the given attempt, starting at 0.
func (g *Generator) Candidate(attempt int) string {
	if attempt == 0 {
		return FromTime(g.now())
	}
	var sb strings.Builder
	sb.Grow(Length)
	for i := 0; i < Length; i++ {
		sb.WriteByte(byte('0' + g.digits()))
	}
	return sb.String()
}

// FromTime returns the last 13 digits of the Unix time in milliseconds.
func FromTime(t time.Time) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)
	if len(ms) > Length {
		return ms[len(ms)-Length:]
	}
	return strings.Repeat("0", Length-len(ms)) + ms
}
