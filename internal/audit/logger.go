// Package audit emits structured audit events for every download attempt.
// Events are newline delimited JSON on stdout so the platform's log shipper
// can pick them up independently of application logging.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crowdforge/contest-api/internal/logger"
	"github.com/crowdforge/contest-api/internal/types"
)

type Context struct {
	ChallengeID int64
	UserID      int64
}

func dispForOutcome(successful bool) Disposition {
	if successful {
		return DispositionGood
	}
	return DispositionBad
}

func baseMessage(c Context, typ EventType, disp Disposition) Message {
	return Message{
		EventID:       uuid.New(),
		LogContext:    logContext,
		SchemaVersion: schemaVersion,
		ChallengeID:   c.ChallengeID,
		UserID:        c.UserID,
		Disposition:   disp,
		Type:          typ,
		Timestamp:     types.UnixMilli(time.Now().UTC().UnixMilli()),
	}
}

func LogDownloadAttempt(
	c Context,
	submissionID int64,
	track types.Track,
	phase types.Phase,
	remoteAddr string,
	rule string,
	reason string,
	successful bool,
) {
	event := DownloadAttempt{}
	event.Message = baseMessage(c, EvtDownloadAttempt, dispForOutcome(successful))

	event.Event.SubmissionID = submissionID
	event.Event.Track = track
	event.Event.Phase = phase.String()
	event.Event.RemoteAddr = remoteAddr
	event.Event.Rule = rule
	event.Event.Reason = reason
	event.Event.Successful = successful

	evtStr, err := json.Marshal(event)
	if err != nil {
		logger.Logger.Error(
			"could not serialize DownloadAttempt event",
			"submissionID",
			submissionID,
			"track",
			track,
			"userID",
			c.UserID,
			"successful",
			successful,
		)
		return
	}

	fmt.Println(string(evtStr))
}

func LogDocumentAccess(c Context, documentID int64, remoteAddr string, reason string, successful bool) {
	event := DocumentAccess{}
	event.Message = baseMessage(c, EvtDocumentAccess, dispForOutcome(successful))

	event.Event.DocumentID = documentID
	event.Event.RemoteAddr = remoteAddr
	event.Event.Reason = reason
	event.Event.Successful = successful

	evtStr, err := json.Marshal(event)
	if err != nil {
		logger.Logger.Error(
			"could not serialize DocumentAccess event",
			"documentID",
			documentID,
			"userID",
			c.UserID,
			"successful",
			successful,
		)
		return
	}

	fmt.Println(string(evtStr))
}

func LogRateLimited(c Context, remoteAddr string, identifier string) {
	event := RateLimited{}
	event.Message = baseMessage(c, EvtRateLimited, DispositionBad)

	event.Event.RemoteAddr = remoteAddr
	event.Event.Identifier = identifier

	evtStr, err := json.Marshal(event)
	if err != nil {
		logger.Logger.Error(
			"could not serialize RateLimited event",
			"identifier",
			identifier,
			"userID",
			c.UserID,
		)
		return
	}

	fmt.Println(string(evtStr))
}
