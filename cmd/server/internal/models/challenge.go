package models

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/crowdforge/contest-api/internal/download"
	"github.com/crowdforge/contest-api/internal/types"
)

type Challenge struct {
	Model
	Track               types.Track
	Name                string
	SubmissionsViewable bool
	CheckpointRound     bool
}

func (Challenge) TableName() string {
	return "challenge"
}

func (c Challenge) GetID() int64 {
	return c.ID
}

type ChallengePhase struct {
	Model
	ChallengeID int64
	PhaseType   int
	StartsAt    time.Time
	EndsAt      time.Time
}

func (ChallengePhase) TableName() string {
	return "challenge_phase"
}

func (p ChallengePhase) GetID() int64 {
	return p.ID
}

// PhaseWindows loads a challenge's schedule as resolver input.
func PhaseWindows(ctx context.Context, db *gorm.DB, challengeID int64) ([]download.Window, error) {
	ctx, span := tracer.Start(ctx, "PhaseWindows")
	defer span.End()

	span.SetAttributes(attribute.Int64("challengeID", challengeID))

	var phases []ChallengePhase
	err := db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("starts_at ASC").
		Find(&phases).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch challenge phases")
		return nil, err
	}

	windows := make([]download.Window, 0, len(phases))
	for _, p := range phases {
		windows = append(windows, download.Window{
			StartsAt: p.StartsAt,
			EndsAt:   p.EndsAt,
			Phase:    types.Phase(p.PhaseType),
		})
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "fetched challenge phases")
	return windows, nil
}
