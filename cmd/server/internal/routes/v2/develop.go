package v2

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	srverr "github.com/crowdforge/contest-api/cmd/server/internal/error"
	servermiddleware "github.com/crowdforge/contest-api/cmd/server/internal/middleware"
	"github.com/crowdforge/contest-api/cmd/server/internal/models"
	"github.com/crowdforge/contest-api/cmd/server/internal/response"
	"github.com/crowdforge/contest-api/internal/audit"
	"github.com/crowdforge/contest-api/internal/content"
	"github.com/crowdforge/contest-api/internal/download"
	"github.com/crowdforge/contest-api/internal/logger"
	"github.com/crowdforge/contest-api/internal/storage"
	"github.com/crowdforge/contest-api/internal/types"
)

const (
	msgNoSuchSubmission = "No such submission exists."
	msgNoSuchUpload     = "No such upload exists."
	msgDeleted          = "This submission has been deleted."
	msgNonDevelop       = "Non-Develop challenge submissions are not supported by this API."
	msgNonDesign        = "Non-Design challenge submissions are not supported by this API."
	msgUnsupportedTrack = "Marathon Match and Spec Review submissions are not supported by this API."
)

// lookup is the per-request state both download endpoints assemble before
// the decision engine runs.
type lookup struct {
	caller     servermiddleware.Caller
	challenge  *models.Challenge
	submission *models.Submission
	phase      types.Phase
	roles      types.RoleSet
}

// find loads the submission and its challenge, applying the categorical
// track rejections. wantTrack is the track the endpoint serves.
func (h *Handler) find(
	c echo.Context,
	submissionID int64,
	wantTrack types.Track,
) (*models.Submission, *models.Challenge, error) {
	ctx := c.Request().Context()
	db := h.DB.WithContext(ctx)

	sub, err := models.ByID[models.Submission](ctx, db, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The legacy contracts differ per track: develop reports a
			// missing upload, design a missing submission.
			if wantTrack == types.TrackDevelop {
				return nil, nil, response.NotFound(msgNoSuchUpload)
			}
			return nil, nil, response.NotFound(msgNoSuchSubmission)
		}
		return nil, nil, response.InternalServerError
	}

	challenge, err := models.ByID[models.Challenge](ctx, db, sub.ChallengeID)
	if err != nil {
		return nil, nil, response.InternalServerError
	}

	switch challenge.Track {
	case types.TrackMarathon, types.TrackSpecReview:
		return nil, nil, response.BadRequest(msgUnsupportedTrack)
	case wantTrack:
	default:
		if wantTrack == types.TrackDevelop {
			return nil, nil, response.BadRequest(msgNonDevelop)
		}
		return nil, nil, response.BadRequest(msgNonDesign)
	}

	return sub, challenge, nil
}

// resolve fans out role and phase resolution, then fills in the caller
// facts the rule set needs.
func (h *Handler) resolve(c echo.Context, lk *lookup) error {
	ctx := c.Request().Context()

	now, ok := c.Get("time").(time.Time)
	if !ok {
		now = time.Now()
	}

	var windows []download.Window

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		lk.roles, err = models.RolesFor(egCtx, h.DB, lk.submission.ChallengeID, lk.caller.UserID)
		return err
	})
	eg.Go(func() error {
		var err error
		windows, err = models.PhaseWindows(egCtx, h.DB, lk.submission.ChallengeID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return response.InternalServerError
	}

	if lk.caller.Admin {
		lk.roles.Add(types.RoleViewAllSubmissions)
	}

	lk.phase = download.CurrentPhase(windows, now)
	return nil
}

// decide runs the pure rule set over the assembled request state.
func (h *Handler) decide(c echo.Context, lk *lookup, original bool) (download.Decision, error) {
	ctx := c.Request().Context()
	db := h.DB.WithContext(ctx)

	in := download.Input{
		Roles: lk.roles,
		Phase: lk.phase,
		Track: lk.challenge.Track,
		Submission: download.Submission{
			ID:          lk.submission.ID,
			SubmitterID: lk.submission.SubmitterID,
			Category:    lk.submission.Category,
			Purchased:   lk.submission.Purchased,
		},
		CallerID:            lk.caller.UserID,
		Original:            original,
		SubmissionsViewable: lk.challenge.SubmissionsViewable,
	}

	if in.Roles.Has(types.RoleSubmitter) && lk.caller.UserID != lk.submission.SubmitterID {
		status, err := models.UserScreeningStatus(ctx, db, lk.submission.ChallengeID, lk.caller.UserID)
		if err != nil {
			return download.Decision{}, response.InternalServerError
		}
		in.CallerPassedScreening = status.Passed
		in.CallerFailedScreening = status.Failed
	}

	if in.Roles.Has(types.RoleIterativeReviewer) {
		state, err := models.ReviewStateFor(
			ctx, db,
			lk.submission.ChallengeID, lk.caller.UserID, lk.submission.ID,
		)
		if err != nil {
			return download.Decision{}, response.InternalServerError
		}
		in.ReviewedByCaller = state.Reviewed
		in.NextInReviewQueue = state.Next
	}

	return download.Decide(in), nil
}

// recordDevelopAudit appends the audit row and emits the audit event for a
// develop attempt. Failures are logged, never surfaced; the download
// outcome does not depend on the audit write.
func (h *Handler) recordDevelopAudit(c echo.Context, lk *lookup, decision download.Decision) {
	ctx := c.Request().Context()

	err := models.RecordDownloadAttempt(
		ctx,
		h.DB,
		lk.submission.ID,
		lk.caller.UserID,
		c.RealIP(),
		decision.Allowed,
	)
	if err != nil {
		logger.Logger.ErrorContext(ctx, "failed to record download audit row",
			"error", err,
			"submissionID", lk.submission.ID,
			"userID", lk.caller.UserID,
		)
	}

	audit.LogDownloadAttempt(
		audit.Context{ChallengeID: lk.submission.ChallengeID, UserID: lk.caller.UserID},
		lk.submission.ID,
		lk.challenge.Track,
		lk.phase,
		c.RealIP(),
		decision.Rule,
		decision.Reason,
		decision.Allowed,
	)
}

// serve streams a resolved artifact with the download headers set.
func (h *Handler) serve(c echo.Context, art content.Artifact) error {
	ctx := c.Request().Context()

	obj, err := h.store.Open(ctx, art.Path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return response.NotFound(msgNoSuchUpload)
		}
		return response.InternalServerError
	}
	defer obj.Body.Close()

	disposition := "attachment"
	if art.Inline {
		disposition = "inline"
	}

	// The legacy platform emits the filename bare. Quote only names the
	// bare form cannot carry.
	name := art.FileName
	if strings.ContainsAny(name, ` ";`) {
		name = fmt.Sprintf("%q", name)
	}

	c.Response().Header().Set(
		echo.HeaderContentDisposition,
		fmt.Sprintf("%s; filename=%s", disposition, name),
	)
	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(obj.Size, 10))

	return c.Stream(http.StatusOK, art.ContentType, obj.Body)
}

// DevelopDownload serves GET /v2/develop/download/:submissionId.
func (h *Handler) DevelopDownload(c echo.Context) error {
	_, span := tracer.Start(c.Request().Context(), "DevelopDownload")
	defer span.End()

	submissionID, err := pathID(c, "submissionId")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "rejected invalid submission id")
		return err
	}

	span.SetAttributes(attribute.Int64("submissionID", submissionID))

	caller, ok := servermiddleware.CallerFrom(c)
	if !ok {
		span.RecordError(srverr.ErrTypeAssertMismatch)
		span.SetStatus(codes.Error, fmt.Sprintf("caller: %s", srverr.ErrTypeAssertMismatch))
		return response.InternalServerError
	}

	sub, challenge, err := h.find(c, submissionID, types.TrackDevelop)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "lookup rejected the request")
		return err
	}

	artifact := func(callerID int64) (content.Artifact, error) {
		return content.ResolveDevelop(content.Submission{
			ID:               sub.ID,
			SubmitterID:      sub.SubmitterID,
			OriginalFileName: sub.OriginalName,
			StoredPath:       sub.OriginalPath,
		}, callerID)
	}

	// The processing service account sees everything and leaves no audit
	// trail.
	if caller.Thurgood {
		span.AddEvent("service account download")
		art, err := artifact(0)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Ok, "no stored upload")
			return response.NotFound(msgNoSuchUpload)
		}

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "served service account download")
		return h.serve(c, art)
	}

	lk := &lookup{caller: caller, challenge: challenge, submission: sub}
	if err := h.resolve(c, lk); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve phase and roles")
		return err
	}

	span.SetAttributes(
		attribute.String("phase", lk.phase.String()),
		attribute.Int64("userID", caller.UserID),
	)

	if sub.Deleted && !lk.roles.Has(types.RoleViewAllSubmissions) {
		span.AddEvent("deleted submission hidden")
		span.SetStatus(codes.Ok, "hid deleted submission")
		return response.NotFound(msgDeleted)
	}

	decision, err := h.decide(c, lk, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to assemble decision input")
		return err
	}

	h.recordDevelopAudit(c, lk, decision)

	if !decision.Allowed {
		span.AddEvent("download denied", trace.WithAttributes(
			attribute.String("rule", decision.Rule),
			attribute.String("reason", decision.Reason),
		))
		span.SetStatus(codes.Ok, "denied download")
		return response.Forbidden(decision.Reason)
	}

	art, err := artifact(caller.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "no stored upload")
		return response.NotFound(msgNoSuchUpload)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "served download")
	return h.serve(c, art)
}
