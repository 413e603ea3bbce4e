package anpr

import (
	"strings"

	"parking-service/internal/utils"
)

const plateLength = 7

// Resolver denoises a stream of raw OCR readings into one validated plate.
// Validated candidates accumulate in a bounded buffer; once the buffer holds
// threshold readings a majority vote picks the winner and the buffer clears.
// A relative majority within the window is enough, so an isolated misread
// does not force three literal repeats.
type Resolver struct {
	regionPrefix string
	threshold    int
	buffer       []string
}

func NewResolver(regionPrefix string, threshold int) *Resolver {
	if threshold < 1 {
		threshold = 1
	}
	return &Resolver{
		regionPrefix: regionPrefix,
		threshold:    threshold,
		buffer:       make([]string, 0, threshold),
	}
}

// Validate normalizes a raw OCR reading and checks it against the plate
// grammar: the region prefix opening a run of three uppercase letters, then
// three digits, then one uppercase letter. OCR often carries junk around the
// plate, so the check anchors on the first occurrence of the prefix.
func (r *Resolver) Validate(raw string) (string, bool) {
	text := utils.NormalizePlate(raw)

	start := strings.Index(text, r.regionPrefix)
	if start < 0 || len(text)-start < plateLength {
		return "", false
	}

	plate := text[start : start+plateLength]
	letters, digits, suffix := plate[:3], plate[3:6], plate[6]
	for i := 0; i < len(letters); i++ {
		if letters[i] < 'A' || letters[i] > 'Z' {
			return "", false
		}
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", false
		}
	}
	if suffix < 'A' || suffix > 'Z' {
		return "", false
	}

	return plate, true
}

// Offer feeds one raw reading into the resolver. It returns the consensus
// plate exactly once, on the reading that fills the buffer; every other call
// returns ok=false. Invalid readings never enter the buffer.
func (r *Resolver) Offer(raw string) (string, bool) {
	plate, ok := r.Validate(raw)
	if !ok {
		return "", false
	}

	r.buffer = append(r.buffer, plate)
	if len(r.buffer) < r.threshold {
		return "", false
	}

	winner := majority(r.buffer)
	r.buffer = r.buffer[:0]
	return winner, true
}

// Pending reports how many validated candidates are waiting for consensus.
func (r *Resolver) Pending() int {
	return len(r.buffer)
}

// majority returns the most frequent value; ties break toward the value
// appended earliest, keeping resolution deterministic.
func majority(candidates []string) string {
	counts := make(map[string]int, len(candidates))
	for _, c := range candidates {
		counts[c]++
	}

	winner := candidates[0]
	best := counts[winner]
	for _, c := range candidates {
		if counts[c] > best {
			winner = c
			best = counts[c]
		}
	}
	return winner
}
