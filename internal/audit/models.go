package audit

import (
	"github.com/google/uuid"

	"github.com/crowdforge/contest-api/internal/types"
)

var schemaVersion = "1.0.0"
var logContext = "audit"

type Disposition string

const (
	DispositionNeutral Disposition = "neutral"
	DispositionGood    Disposition = "good"
	DispositionBad     Disposition = "bad"
)

type EventType string

const (
	EvtDownloadAttempt EventType = "download_attempt"
	EvtDocumentAccess  EventType = "document_access"
	EvtRateLimited     EventType = "rate_limited"
)

type Message struct {
	EventID       uuid.UUID   `json:"event_id"     validate:"required"`
	LogContext    string      `json:"log_context"  validate:"required"`
	SchemaVersion string      `json:"version"      validate:"required"`
	ChallengeID   int64       `json:"challenge_id"`
	UserID        int64       `json:"user_id"`
	Disposition   Disposition `json:"disposition"  validate:"required"`
	Type          EventType   `json:"event_type"   validate:"required"`

	Timestamp types.UnixMilli `json:"timestamp" validate:"required"`
}

type DownloadAttemptEvent struct {
	SubmissionID int64       `json:"submission_id" validate:"required"`
	Track        types.Track `json:"track"         validate:"required"`
	Phase        string      `json:"phase"         validate:"required"`
	RemoteAddr   string      `json:"remote_addr"`
	Rule         string      `json:"rule"`
	Reason       string      `json:"reason"`
	Successful   bool        `json:"successful"`
}

type DownloadAttempt struct {
	Event DownloadAttemptEvent `json:"event" validate:"required"`
	Message
}

type DocumentAccessEvent struct {
	DocumentID int64  `json:"document_id" validate:"required"`
	RemoteAddr string `json:"remote_addr"`
	Reason     string `json:"reason"`
	Successful bool   `json:"successful"`
}

type DocumentAccess struct {
	Event DocumentAccessEvent `json:"event" validate:"required"`
	Message
}

type RateLimitedEvent struct {
	RemoteAddr string `json:"remote_addr"`
	Identifier string `json:"identifier"`
}

type RateLimited struct {
	Event RateLimitedEvent `json:"event"`
	Message
}
