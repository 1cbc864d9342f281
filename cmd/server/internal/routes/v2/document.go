package v2

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	srverr "github.com/crowdforge/contest-api/cmd/server/internal/error"
	servermiddleware "github.com/crowdforge/contest-api/cmd/server/internal/middleware"
	"github.com/crowdforge/contest-api/cmd/server/internal/models"
	"github.com/crowdforge/contest-api/cmd/server/internal/response"
	"github.com/crowdforge/contest-api/internal/audit"
	"github.com/crowdforge/contest-api/internal/content"
)

const (
	msgDocumentNotFound   = "Document not found"
	msgDocumentWrongOwner = "Document does not belong to project with given challengeId"
	msgDocumentForbidden  = "You don't have permission to access this document"
)

// DocumentDownload serves GET /v2/download/document/:documentId.
func (h *Handler) DocumentDownload(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "DocumentDownload")
	defer span.End()

	documentID, err := pathID(c, "documentId")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "rejected invalid document id")
		return err
	}

	var challengeID int64
	if raw := c.QueryParam("challengeId"); raw != "" {
		challengeID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			span.SetStatus(codes.Ok, "rejected invalid challenge id")
			return response.BadRequest("challengeId should be number.")
		}
		if challengeID <= 0 {
			span.SetStatus(codes.Ok, "rejected invalid challenge id")
			return response.BadRequest("challengeId should be positive.")
		}
	}

	span.SetAttributes(
		attribute.Int64("documentID", documentID),
		attribute.Int64("challengeID", challengeID),
	)

	caller, ok := servermiddleware.CallerFrom(c)
	if !ok {
		span.RecordError(srverr.ErrTypeAssertMismatch)
		span.SetStatus(codes.Error, fmt.Sprintf("caller: %s", srverr.ErrTypeAssertMismatch))
		return response.InternalServerError
	}

	db := h.DB.WithContext(ctx)

	doc, err := models.ByID[models.Document](ctx, db, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "document not found")
			return response.NotFound(msgDocumentNotFound)
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch document")
		return response.InternalServerError
	}

	auditCtx := audit.Context{ChallengeID: doc.ChallengeID, UserID: caller.UserID}

	if challengeID != 0 && doc.ChallengeID != challengeID {
		span.AddEvent("challenge mismatch")
		span.SetStatus(codes.Ok, "document belongs to another challenge")
		audit.LogDocumentAccess(auditCtx, doc.ID, c.RealIP(), msgDocumentWrongOwner, false)
		return response.BadRequest(msgDocumentWrongOwner)
	}

	if !doc.Downloadable && !caller.Admin {
		span.AddEvent("document access denied")
		span.SetStatus(codes.Ok, "denied document access")
		audit.LogDocumentAccess(auditCtx, doc.ID, c.RealIP(), msgDocumentForbidden, false)
		return response.Forbidden(msgDocumentForbidden)
	}

	audit.LogDocumentAccess(auditCtx, doc.ID, c.RealIP(), "", true)

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "served document")
	return h.serve(c, content.Artifact{
		Path:        doc.Path,
		FileName:    doc.FileName,
		ContentType: content.ContentType(doc.FileName),
		Inline:      false,
	})
}
