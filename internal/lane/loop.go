package lane

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"parking-service/internal/anpr"
	"parking-service/internal/client"
	"parking-service/internal/gate"
)

// Decider is the decision engine a lane loop drives: the admission service on
// the entry lane, the exit service on the exit lane.
type Decider interface {
	Decide(ctx context.Context, plate string) (outcome string, err error)
}

// Loop is one single-threaded cooperative lane cycle: read the distance
// sensor, and while a vehicle is within operating distance, pull raw
// candidates from the vision collaborator, feed them to the resolver and run
// the decision for each consensus plate. Every step is synchronous; the next
// sensor read waits for gate dwell and alarm bursts to finish.
type Loop struct {
	actuator      *gate.Actuator
	vision        *client.VisionClient
	resolver      *anpr.Resolver
	decider       Decider
	minDistanceCm float64
	maxDistanceCm float64
	idleDelay     time.Duration
	log           zerolog.Logger
}

func NewLoop(
	actuator *gate.Actuator,
	vision *client.VisionClient,
	resolver *anpr.Resolver,
	decider Decider,
	minDistanceCm, maxDistanceCm float64,
	log zerolog.Logger,
) *Loop {
	return &Loop{
		actuator:      actuator,
		vision:        vision,
		resolver:      resolver,
		decider:       decider,
		minDistanceCm: minDistanceCm,
		maxDistanceCm: maxDistanceCm,
		idleDelay:     100 * time.Millisecond,
		log:           log,
	}
}

// Run drives the lane until the context is cancelled or the vision
// collaborator fails. A vision failure is fatal to the loop; the error
// carries the operator-visible reason.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info().Msg("lane loop ready")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		distance, ok := l.actuator.ReadDistance()
		if !ok {
			// Missed sample; assume a vehicle may be present, as the
			// controller only streams readings intermittently.
			distance = l.maxDistanceCm - 1
		}

		if distance < l.minDistanceCm || distance > l.maxDistanceCm {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.idleDelay):
			}
			continue
		}

		candidates, err := l.vision.Detect(ctx)
		if err != nil {
			l.log.Error().Err(err).Msg("vision collaborator failed")
			return err
		}

		for _, raw := range candidates {
			plate, resolved := l.resolver.Offer(raw)
			if !resolved {
				continue
			}

			outcome, err := l.decider.Decide(ctx, plate)
			if err != nil {
				// Store or actuator trouble aborts this decision only; the
				// loop proceeds to its next cycle.
				l.log.Error().Err(err).Str("plate", plate).Msg("decision failed")
				continue
			}
			l.log.Info().Str("plate", plate).Str("outcome", outcome).Msg("decision")
		}
	}
}
