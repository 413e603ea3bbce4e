package lane

import (
	"context"

	"parking-service/internal/service"
)

// AdmissionDecider adapts the admission service to the lane loop.
type AdmissionDecider struct {
	Admissions *service.AdmissionService
}

func (d AdmissionDecider) Decide(ctx context.Context, plate string) (string, error) {
	decision, err := d.Admissions.Admit(ctx, plate)
	if err != nil {
		return "", err
	}
	return decision.String(), nil
}

// ExitDecider adapts the exit service to the lane loop.
type ExitDecider struct {
	Exits *service.ExitService
}

func (d ExitDecider) Decide(ctx context.Context, plate string) (string, error) {
	decision, err := d.Exits.Authorize(ctx, plate)
	if err != nil {
		return "", err
	}
	return decision.String(), nil
}
