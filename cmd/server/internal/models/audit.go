package models

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

// DownloadAudit is one attempted develop submission download. Rows are
// append-only; the table name is kept from the legacy platform schema.
type DownloadAudit struct {
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ID         int64 `gorm:"primaryKey"`
	UploadID   int64
	UserID     int64
	IPAddress  string
	Date       time.Time
	Successful bool
}

func (DownloadAudit) TableName() string {
	return "project_download_audit"
}

func (a DownloadAudit) GetID() int64 {
	return a.ID
}

// RecordDownloadAttempt appends one audit row for a develop download
// attempt, allowed or denied.
func RecordDownloadAttempt(
	ctx context.Context,
	db *gorm.DB,
	uploadID int64,
	userID int64,
	ipAddress string,
	successful bool,
) error {
	ctx, span := tracer.Start(ctx, "RecordDownloadAttempt")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("uploadID", uploadID),
		attribute.Int64("userID", userID),
		attribute.Bool("successful", successful),
	)

	row := DownloadAudit{
		UploadID:   uploadID,
		UserID:     userID,
		IPAddress:  ipAddress,
		Date:       time.Now().UTC(),
		Successful: successful,
	}

	err := db.WithContext(ctx).Create(&row).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record download attempt")
		return err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "recorded download attempt")
	return nil
}
