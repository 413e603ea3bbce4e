package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-service/internal/model"
)

type scriptedTransport struct {
	inbound []string
	sent    []string
}

func (s *scriptedTransport) ReadLine(ctx context.Context) (string, error) {
	if len(s.inbound) > 0 {
		line := s.inbound[0]
		s.inbound = s.inbound[1:]
		return line, nil
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func (s *scriptedTransport) WriteLine(line string) error {
	s.sent = append(s.sent, line)
	return nil
}

func (s *scriptedTransport) Close() error { return nil }

func newSettlementService(h *harness, transport *scriptedTransport, now time.Time) *SettlementService {
	svc := NewSettlementService(h.entryRepo, transport, 500, 30*time.Millisecond, 30*time.Millisecond, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestComputeFee(t *testing.T) {
	entry := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    int64
	}{
		{"one second bills one hour", time.Second, 500},
		{"exactly one hour bills one hour", time.Hour, 500},
		{"one second past the hour bills two", time.Hour + time.Second, 1000},
		{"half a second past the hour bills two", time.Hour + 500*time.Millisecond, 1000},
		{"three hours flat", 3 * time.Hour, 1500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeFee(entry, entry.Add(tc.elapsed), 500))
		})
	}
}

func TestSettle_HappyPathCommits(t *testing.T) {
	h := newHarness(t)
	now := time.Now()
	transport := &scriptedTransport{inbound: []string{"READY", "DONE"}}
	svc := newSettlementService(h, transport, now)

	entry := h.seedEntry(t, &model.ParkingEntry{
		EntryTime:     now.Add(-30 * time.Minute),
		Plate:         "RAD123A",
		PaymentStatus: false,
	})

	require.NoError(t, svc.Settle(context.Background(), "RAD123A", 2000))

	assert.Equal(t, []string{"1500"}, transport.sent)

	var settled model.ParkingEntry
	require.NoError(t, h.db.First(&settled, "id = ?", entry.ID).Error)
	assert.True(t, settled.PaymentStatus)
	require.NotNil(t, settled.ExitTime)
	require.NotNil(t, settled.DuePayment)
	assert.Equal(t, int64(500), *settled.DuePayment)
}

func TestSettle_UnknownPlateIsANoOp(t *testing.T) {
	h := newHarness(t)
	transport := &scriptedTransport{}
	svc := newSettlementService(h, transport, time.Now())

	require.NoError(t, svc.Settle(context.Background(), "RAZ999Z", 2000))
	assert.Empty(t, transport.sent)
}

func TestSettle_InsufficientBalanceAbortsWithMarker(t *testing.T) {
	h := newHarness(t)
	now := time.Now()
	transport := &scriptedTransport{inbound: []string{"READY", "DONE"}}
	svc := newSettlementService(h, transport, now)

	entry := h.seedEntry(t, &model.ParkingEntry{
		EntryTime:     now.Add(-30 * time.Minute),
		Plate:         "RAD123A",
		PaymentStatus: false,
	})

	require.NoError(t, svc.Settle(context.Background(), "RAD123A", 100))

	assert.Equal(t, []string{"I"}, transport.sent)

	var unchanged model.ParkingEntry
	require.NoError(t, h.db.First(&unchanged, "id = ?", entry.ID).Error)
	assert.False(t, unchanged.PaymentStatus)
	assert.Nil(t, unchanged.ExitTime)
	assert.Nil(t, unchanged.DuePayment)
}

func TestSettle_ReadyTimeoutLeavesEntryUntouched(t *testing.T) {
	h := newHarness(t)
	now := time.Now()
	transport := &scriptedTransport{}
	svc := newSettlementService(h, transport, now)

	entry := h.seedEntry(t, &model.ParkingEntry{
		EntryTime:     now.Add(-30 * time.Minute),
		Plate:         "RAD123A",
		PaymentStatus: false,
	})

	require.NoError(t, svc.Settle(context.Background(), "RAD123A", 2000))

	// No balance was sent without the readiness marker.
	assert.Empty(t, transport.sent)

	var unchanged model.ParkingEntry
	require.NoError(t, h.db.First(&unchanged, "id = ?", entry.ID).Error)
	assert.False(t, unchanged.PaymentStatus)
}

func TestSettle_DoneTimeoutLeavesEntryUnpaid(t *testing.T) {
	h := newHarness(t)
	now := time.Now()
	transport := &scriptedTransport{inbound: []string{"READY"}}
	svc := newSettlementService(h, transport, now)

	entry := h.seedEntry(t, &model.ParkingEntry{
		EntryTime:     now.Add(-30 * time.Minute),
		Plate:         "RAD123A",
		PaymentStatus: false,
	})

	require.NoError(t, svc.Settle(context.Background(), "RAD123A", 2000))

	// The balance went out, but without DONE the attempt is unconfirmed and
	// the row stays unpaid so a later message can retry.
	assert.Equal(t, []string{"1500"}, transport.sent)

	var unchanged model.ParkingEntry
	require.NoError(t, h.db.First(&unchanged, "id = ?", entry.ID).Error)
	assert.False(t, unchanged.PaymentStatus)
	assert.Nil(t, unchanged.ExitTime)
	assert.Nil(t, unchanged.DuePayment)
}

func TestSettle_TargetsNewestUnpaidEntry(t *testing.T) {
	h := newHarness(t)
	now := time.Now()
	transport := &scriptedTransport{inbound: []string{"READY", "DONE"}}
	svc := newSettlementService(h, transport, now)

	old := h.seedEntry(t, &model.ParkingEntry{
		EntryTime:     now.Add(-48 * time.Hour),
		Plate:         "RAD123A",
		PaymentStatus: false,
	})
	newest := h.seedEntry(t, &model.ParkingEntry{
		EntryTime:     now.Add(-30 * time.Minute),
		Plate:         "RAD123A",
		PaymentStatus: false,
	})

	require.NoError(t, svc.Settle(context.Background(), "RAD123A", 5000))

	var settled model.ParkingEntry
	require.NoError(t, h.db.First(&settled, "id = ?", newest.ID).Error)
	assert.True(t, settled.PaymentStatus)

	var untouched model.ParkingEntry
	require.NoError(t, h.db.First(&untouched, "id = ?", old.ID).Error)
	assert.False(t, untouched.PaymentStatus)
}
