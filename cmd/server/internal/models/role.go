package models

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/crowdforge/contest-api/internal/types"
)

type RoleAssignment struct {
	Model
	ChallengeID int64
	UserID      int64
	Role        types.Role
}

func (RoleAssignment) TableName() string {
	return "role_assignment"
}

func (r RoleAssignment) GetID() int64 {
	return r.ID
}

// RolesFor collects a user's roles on a challenge.
func RolesFor(ctx context.Context, db *gorm.DB, challengeID int64, userID int64) (types.RoleSet, error) {
	ctx, span := tracer.Start(ctx, "RolesFor")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("challengeID", challengeID),
		attribute.Int64("userID", userID),
	)

	var assignments []RoleAssignment
	err := db.WithContext(ctx).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		Find(&assignments).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch role assignments")
		return nil, err
	}

	roles := types.NewRoleSet()
	for _, a := range assignments {
		roles.Add(a.Role)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "fetched role assignments")
	return roles, nil
}
