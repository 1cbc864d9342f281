package models

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crowdforge/contest-api/internal/types"
)

type Submission struct {
	Model
	ChallengeID     int64
	SubmitterID     int64
	Category        types.SubmissionCategory
	Deleted         bool
	Purchased       bool
	PassedScreening datatypes.Null[bool]
	OriginalPath    string
	OriginalName    string
	PreviewPath     string
	PreviewName     string
}

func (Submission) TableName() string {
	return "submission"
}

func (s Submission) GetID() int64 {
	return s.ID
}

type SubmissionImage struct {
	Model
	SubmissionID int64
	ImageTypeID  int
	FileIndex    int
	Path         string
	FileName     string
}

func (SubmissionImage) TableName() string {
	return "submission_image"
}

func (i SubmissionImage) GetID() int64 {
	return i.ID
}

// ImagesForSubmission returns a submission's gallery images ordered by
// file index so the first render of each type wins.
func ImagesForSubmission(ctx context.Context, db *gorm.DB, submissionID int64) ([]SubmissionImage, error) {
	ctx, span := tracer.Start(ctx, "ImagesForSubmission")
	defer span.End()

	span.SetAttributes(attribute.Int64("submissionID", submissionID))

	var images []SubmissionImage
	err := db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("file_index ASC").
		Find(&images).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch submission images")
		return nil, err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "fetched submission images")
	return images, nil
}

// ScreeningStatus summarizes a user's own screening outcome on a
// challenge. Passed and Failed are both false while screening results
// are still pending or the user never submitted.
type ScreeningStatus struct {
	Passed bool
	Failed bool
}

func UserScreeningStatus(
	ctx context.Context,
	db *gorm.DB,
	challengeID int64,
	userID int64,
) (ScreeningStatus, error) {
	ctx, span := tracer.Start(ctx, "UserScreeningStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("challengeID", challengeID),
		attribute.Int64("userID", userID),
	)

	var subs []Submission
	err := db.WithContext(ctx).
		Where(
			"challenge_id = ? AND submitter_id = ? AND category = ? AND deleted = false",
			challengeID, userID, types.CategoryContest,
		).
		Find(&subs).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch user submissions")
		return ScreeningStatus{}, err
	}

	var status ScreeningStatus
	for _, s := range subs {
		if !s.PassedScreening.Valid {
			continue
		}
		if s.PassedScreening.V {
			status.Passed = true
		} else {
			status.Failed = true
		}
	}

	// Passing any submission outweighs failing another.
	if status.Passed {
		status.Failed = false
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "computed screening status")
	return status, nil
}

type IterativeReview struct {
	Model
	ChallengeID  int64
	ReviewerID   int64
	SubmissionID int64
	Committed    bool
}

func (IterativeReview) TableName() string {
	return "iterative_review"
}

func (r IterativeReview) GetID() int64 {
	return r.ID
}

// IterativeReviewState reports where a submission sits relative to an
// iterative reviewer's queue. The queue walks non-deleted contest
// submissions in ascending id order; the next submission is the first
// one without a committed review.
type IterativeReviewState struct {
	Reviewed bool
	Next     bool
}

func ReviewStateFor(
	ctx context.Context,
	db *gorm.DB,
	challengeID int64,
	reviewerID int64,
	submissionID int64,
) (IterativeReviewState, error) {
	ctx, span := tracer.Start(ctx, "ReviewStateFor")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("challengeID", challengeID),
		attribute.Int64("reviewerID", reviewerID),
		attribute.Int64("submissionID", submissionID),
	)

	db = db.WithContext(ctx)

	var state IterativeReviewState

	reviewed, err := Exists[IterativeReview](ctx, db,
		"challenge_id = ? AND reviewer_id = ? AND submission_id = ? AND committed = true",
		challengeID, reviewerID, submissionID,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check committed review")
		return state, err
	}
	state.Reviewed = reviewed

	var next Submission
	err = db.
		Where(
			"challenge_id = ? AND category = ? AND deleted = false", challengeID, types.CategoryContest,
		).
		Where(
			"id NOT IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&IterativeReview{}).
				Select("submission_id").
				Where("challenge_id = ? AND committed = true", challengeID),
		).
		Order("id ASC").
		First(&next).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.RecordError(nil)
			span.SetStatus(codes.Ok, "queue is drained")
			return state, nil
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to find head of review queue")
		return state, err
	}
	state.Next = next.ID == submissionID

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "computed review state")
	return state, nil
}
