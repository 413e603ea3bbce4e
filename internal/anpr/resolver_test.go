package anpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AcceptsWellFormedPlate(t *testing.T) {
	r := NewResolver("RA", 3)

	plate, ok := r.Validate("RAD123A")
	require.True(t, ok)
	assert.Equal(t, "RAD123A", plate)
}

func TestValidate_NormalizesBeforeChecking(t *testing.T) {
	r := NewResolver("RA", 3)

	plate, ok := r.Validate("  ra d-123a  ")
	require.True(t, ok)
	assert.Equal(t, "RAD123A", plate)
}

func TestValidate_AnchorsOnRegionMarker(t *testing.T) {
	r := NewResolver("RA", 3)

	// OCR junk around the plate is tolerated as long as a full plate
	// follows the marker.
	plate, ok := r.Validate("XXRAB456C")
	require.True(t, ok)
	assert.Equal(t, "RAB456C", plate)
}

func TestValidate_RejectsMalformedCandidates(t *testing.T) {
	r := NewResolver("RA", 3)

	cases := []string{
		"",
		"RAD123",    // too short
		"RA123AB",   // digit where a letter belongs
		"RADXYZA",   // letters where digits belong
		"RAB4567",   // digit suffix
		"QAD123A",   // wrong region marker
		"BD123A",    // no marker at all
	}
	for _, raw := range cases {
		_, ok := r.Validate(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}

func TestOffer_MajorityWinsWithinWindow(t *testing.T) {
	r := NewResolver("RA", 3)

	_, ok := r.Offer("RAD123A")
	assert.False(t, ok)
	_, ok = r.Offer("RAX999X")
	assert.False(t, ok)

	plate, ok := r.Offer("RAD123A")
	require.True(t, ok)
	assert.Equal(t, "RAD123A", plate)
	assert.Equal(t, 0, r.Pending(), "buffer must clear after resolution")
}

func TestOffer_TieBreaksTowardEarliestAppended(t *testing.T) {
	r := NewResolver("RA", 3)

	r.Offer("RAB111B")
	r.Offer("RAC222C")
	plate, ok := r.Offer("RAD333D")
	require.True(t, ok)
	assert.Equal(t, "RAB111B", plate)
}

func TestOffer_InvalidReadingsNeverEnterBuffer(t *testing.T) {
	r := NewResolver("RA", 3)

	r.Offer("garbage")
	r.Offer("RA123")
	assert.Equal(t, 0, r.Pending())

	r.Offer("RAD123A")
	r.Offer("not-a-plate")
	assert.Equal(t, 1, r.Pending())
}

func TestOffer_ResolutionIsDeterministic(t *testing.T) {
	sequence := []string{"RAD123A", "RAX999X", "RAD123A"}

	r1 := NewResolver("RA", 3)
	r2 := NewResolver("RA", 3)

	var w1, w2 string
	for _, raw := range sequence {
		if plate, ok := r1.Offer(raw); ok {
			w1 = plate
		}
	}
	for _, raw := range sequence {
		if plate, ok := r2.Offer(raw); ok {
			w2 = plate
		}
	}

	assert.Equal(t, w1, w2)
	assert.Equal(t, "RAD123A", w1)
}
