package v2

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	srverr "github.com/crowdforge/contest-api/cmd/server/internal/error"
	servermiddleware "github.com/crowdforge/contest-api/cmd/server/internal/middleware"
	"github.com/crowdforge/contest-api/cmd/server/internal/models"
	"github.com/crowdforge/contest-api/cmd/server/internal/response"
	"github.com/crowdforge/contest-api/internal/content"
	"github.com/crowdforge/contest-api/internal/types"
)

// designQuery carries the design endpoint's variant selection parameters,
// validated with the platform's legacy messages.
type designQuery struct {
	Type        types.SubmissionType
	ImageTypeID int
	FileIndex   int
}

func parseDesignQuery(c echo.Context) (designQuery, error) {
	// A bare request serves the watermarked preview, never the original.
	q := designQuery{Type: types.SubmissionTypePreview, FileIndex: 1}

	if raw := c.QueryParam("submissionType"); raw != "" {
		switch types.SubmissionType(raw) {
		case types.SubmissionTypeOriginal, types.SubmissionTypePreview, types.SubmissionTypeSmall:
			q.Type = types.SubmissionType(raw)
		default:
			return q, response.BadRequest(
				"submissionType should be an element of original,preview,small.",
			)
		}
	}

	if raw := c.QueryParam("submissionImageTypeId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return q, response.BadRequest("submissionImageTypeId should be number.")
		}
		if id <= 0 {
			return q, response.BadRequest("submissionImageTypeId should be positive.")
		}
		if !types.ValidImageTypeID(id) {
			return q, response.BadRequest("submissionImageTypeId is not supported.")
		}
		q.ImageTypeID = id
	}

	if raw := c.QueryParam("submissionFileIndex"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return q, response.BadRequest("submissionFileIndex should be number.")
		}
		if idx <= 0 {
			return q, response.BadRequest("submissionFileIndex should be positive.")
		}
		q.FileIndex = idx
	}

	return q, nil
}

// DesignDownload serves GET /v2/design/download/:submissionId.
func (h *Handler) DesignDownload(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "DesignDownload")
	defer span.End()

	submissionID, err := pathID(c, "submissionId")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "rejected invalid submission id")
		return err
	}

	query, err := parseDesignQuery(c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "rejected invalid variant selection")
		return err
	}

	span.SetAttributes(
		attribute.Int64("submissionID", submissionID),
		attribute.String("submissionType", string(query.Type)),
		attribute.Int("imageTypeID", query.ImageTypeID),
	)

	caller, ok := servermiddleware.CallerFrom(c)
	if !ok {
		span.RecordError(srverr.ErrTypeAssertMismatch)
		span.SetStatus(codes.Error, fmt.Sprintf("caller: %s", srverr.ErrTypeAssertMismatch))
		return response.InternalServerError
	}

	sub, challenge, err := h.find(c, submissionID, types.TrackDesign)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "lookup rejected the request")
		return err
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

	original := query.Type == types.SubmissionTypeOriginal && query.ImageTypeID == 0

	decision, err := h.decide(c, lk, original)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to assemble decision input")
		return err
	}

	if !decision.Allowed {
		span.AddEvent("download denied", trace.WithAttributes(
			attribute.String("rule", decision.Rule),
			attribute.String("reason", decision.Reason),
		))
		span.SetStatus(codes.Ok, "denied download")
		return response.Forbidden(decision.Reason)
	}

	images, err := models.ImagesForSubmission(ctx, h.DB, sub.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch submission images")
		return response.InternalServerError
	}

	contentImages := make([]content.Image, 0, len(images))
	for _, img := range images {
		contentImages = append(contentImages, content.Image{
			TypeID:   img.ImageTypeID,
			Path:     img.Path,
			FileName: img.FileName,
		})
	}

	art, err := content.ResolveDesign(
		content.Submission{
			ID:               sub.ID,
			SubmitterID:      sub.SubmitterID,
			OriginalFileName: sub.OriginalName,
			StoredPath:       sub.OriginalPath,
			PreviewPath:      sub.PreviewPath,
		},
		contentImages,
		content.Request{
			Type:        query.Type,
			ImageTypeID: query.ImageTypeID,
			FileIndex:   query.FileIndex,
		},
		caller.UserID,
	)
	if err != nil {
		if errors.Is(err, content.ErrVariantNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Ok, "no artifact for variant")
			return response.NotFound(msgNoSuchUpload)
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve variant")
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "served download")
	return h.serve(c, art)
}
