package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"parking-service/internal/repository"
	"parking-service/internal/terminal"
)

// SettlementService settles the fee for a parked vehicle against the payment
// terminal. The handshake is two-step: the terminal must announce READY
// before the new balance is written, and must confirm DONE before the entry
// is marked paid. Either timeout aborts without touching the database.
type SettlementService struct {
	entryRepo    *repository.EntryRepository
	transport    terminal.Transport
	hourlyRate   int64
	readyTimeout time.Duration
	doneTimeout  time.Duration
	now          NowFunc
	log          zerolog.Logger
}

func NewSettlementService(
	entryRepo *repository.EntryRepository,
	transport terminal.Transport,
	hourlyRate int64,
	readyTimeout, doneTimeout time.Duration,
	log zerolog.Logger,
) *SettlementService {
	return &SettlementService{
		entryRepo:    entryRepo,
		transport:    transport,
		hourlyRate:   hourlyRate,
		readyTimeout: readyTimeout,
		doneTimeout:  doneTimeout,
		now:          DefaultNow,
		log:          log,
	}
}

// ComputeFee bills whole hours, rounded up, with a minimum of one hour for
// any positive duration. The division runs on the raw duration so even a
// fraction of a second past an hour boundary starts the next hour.
func ComputeFee(entryTime, now time.Time, hourlyRate int64) int64 {
	elapsed := now.Sub(entryTime)
	if elapsed <= 0 {
		return hourlyRate
	}
	hours := int64((elapsed + time.Hour - 1) / time.Hour)
	return hours * hourlyRate
}

// Settle processes one inbound balance message. It returns nil for the
// no-op outcomes (unknown plate, insufficient funds, handshake timeout);
// those end the attempt without any state change and a later message may
// retry the same plate.
func (s *SettlementService) Settle(ctx context.Context, plate string, balance int64) error {
	entry, err := s.entryRepo.FindLatestUnpaid(ctx, plate)
	if err != nil {
		return err
	}
	if entry == nil {
		s.log.Info().Str("plate", plate).Msg("plate not found or already paid")
		return nil
	}

	exitTime := s.now()
	amountDue := ComputeFee(entry.EntryTime, exitTime, s.hourlyRate)

	if balance < amountDue {
		s.log.Info().
			Str("plate", plate).
			Int64("balance", balance).
			Int64("amount_due", amountDue).
			Msg("insufficient balance")
		return s.transport.WriteLine(terminal.MarkerInsufficient)
	}

	if err := terminal.AwaitReady(ctx, s.transport, s.readyTimeout); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Error().Str("plate", plate).Msg("timeout waiting for terminal READY")
			return nil
		}
		return fmt.Errorf("ready handshake: %w", err)
	}

	newBalance := balance - amountDue
	if err := s.transport.WriteLine(strconv.FormatInt(newBalance, 10)); err != nil {
		return fmt.Errorf("send new balance: %w", err)
	}
	s.log.Info().
		Str("plate", plate).
		Int64("new_balance", newBalance).
		Msg("sent new balance to terminal")

	if err := terminal.AwaitDone(ctx, s.transport, s.doneTimeout); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// Unconfirmed: the terminal may have decremented its balance even
			// though the entry stays unpaid. No reconciliation exists; the
			// operator has the log line and a future message retries.
			s.log.Error().
				Str("plate", plate).
				Int64("amount_due", amountDue).
				Msg("timeout waiting for payment confirmation, entry left unpaid")
			return nil
		}
		return fmt.Errorf("done handshake: %w", err)
	}

	if err := s.entryRepo.MarkSettled(ctx, entry.ID, exitTime, amountDue); err != nil {
		return fmt.Errorf("commit settlement: %w", err)
	}

	s.log.Info().
		Str("plate", plate).
		Str("entry_id", entry.ID.String()).
		Int64("due_payment", amountDue).
		Msg("payment settled")
	return nil
}
