package download

import (
	"github.com/crowdforge/contest-api/internal/types"
)

// Denial messages are part of the API contract. Clients and the platform
// test harness match on them verbatim, so they must not be reworded.
const (
	MsgNotAllowedInPhase = "You are not allowed to download the submission in this phase."
	MsgAnotherSubmitter  = "You are not allowed to download another submitter's submission in this phase."
	MsgFailedScreening   = "You are not allowed to download the submission because you did not pass screening."
	MsgNotAllowed        = "You are not allowed to download this submission."
	MsgNotPurchased      = "You are not allowed to download the original submission because it has not been purchased."
)

// Decision is the outcome of evaluating one download request against the
// policy. Rule names the rule that decided, for audit events and spans.
type Decision struct {
	Allowed bool
	Rule    string
	Reason  string
}

// Submission carries the per-submission facts the policy needs. It is a
// projection of the persisted submission row; the policy itself does no I/O.
type Submission struct {
	ID          int64
	SubmitterID int64
	Category    types.SubmissionCategory
	Purchased   bool
}

// Input is everything one authorization decision depends on.
type Input struct {
	Roles      types.RoleSet
	Phase      types.Phase
	Track      types.Track
	Submission Submission
	CallerID   int64

	// Original is set when the caller asked for the original artifact
	// rather than a preview rendition. Only meaningful on the design track.
	Original bool

	// SubmissionsViewable mirrors the challenge's post-review visibility
	// flag. Only meaningful on the design track.
	SubmissionsViewable bool

	// CallerPassedScreening and CallerFailedScreening describe the
	// screening outcome of the caller's own submission on the same
	// challenge. Both false means screening has produced no result yet.
	CallerPassedScreening bool
	CallerFailedScreening bool

	// ReviewedByCaller and NextInReviewQueue position the submission in an
	// iterative reviewer's queue.
	ReviewedByCaller  bool
	NextInReviewQueue bool
}

// A rule inspects the input and either decides the request or passes. The
// policy is an ordered rule list evaluated top to bottom; the first rule
// that decides wins.
type rule struct {
	name string
	eval func(in Input) (Decision, bool)
}

func allowed(name string) (Decision, bool) {
	return Decision{Allowed: true, Rule: name}, true
}

func denied(name, reason string) (Decision, bool) {
	return Decision{Allowed: false, Rule: name, Reason: reason}, true
}

func pass() (Decision, bool) {
	return Decision{}, false
}

// Roles with operational oversight of a develop challenge. They download
// anything on it, in any phase, deleted or not.
var developOperatorRoles = []types.Role{
	types.RoleManager,
	types.RoleCopilot,
	types.RoleClientManager,
	types.RoleStudioAdmin,
	types.RoleViewAllSubmissions,
}

// On the design track client managers are not operators: their access to
// originals is gated on purchase.
var designOperatorRoles = []types.Role{
	types.RoleManager,
	types.RoleCopilot,
	types.RoleStudioAdmin,
	types.RoleViewAllSubmissions,
}

var developRules = []rule{
	{name: "operator", eval: func(in Input) (Decision, bool) {
		if in.Roles.HasAny(developOperatorRoles...) {
			return allowed("operator")
		}
		return pass()
	}},
	{name: "owner", eval: func(in Input) (Decision, bool) {
		if in.CallerID == in.Submission.SubmitterID {
			return allowed("owner")
		}
		return pass()
	}},
	{name: "checkpoint", eval: func(in Input) (Decision, bool) {
		if in.Submission.Category != types.CategoryCheckpoint {
			return pass()
		}
		if in.Roles.Has(types.RolePostMortemReviewer) {
			return allowed("checkpoint/post-mortem")
		}
		if in.Roles.Has(types.RoleCheckpointScreener) && in.Phase == types.PhaseCheckpointScreening {
			return allowed("checkpoint/screener")
		}
		if in.Roles.Has(types.RoleCheckpointReviewer) && in.Phase == types.PhaseCheckpointReview {
			return allowed("checkpoint/reviewer")
		}
		return denied("checkpoint", MsgNotAllowedInPhase)
	}},
	{name: "screener", eval: func(in Input) (Decision, bool) {
		if !in.Roles.Has(types.RoleScreener) {
			return pass()
		}
		if in.Phase == types.PhaseScreening {
			return allowed("screener")
		}
		return denied("screener", MsgNotAllowedInPhase)
	}},
	{name: "reviewer", eval: func(in Input) (Decision, bool) {
		if !in.Roles.Has(types.RoleReviewer) {
			return pass()
		}
		if in.Phase == types.PhaseReview {
			return allowed("reviewer")
		}
		return denied("reviewer", MsgNotAllowedInPhase)
	}},
	{name: "iterative-reviewer", eval: func(in Input) (Decision, bool) {
		if !in.Roles.Has(types.RoleIterativeReviewer) {
			return pass()
		}
		if in.ReviewedByCaller || in.NextInReviewQueue {
			return allowed("iterative-reviewer")
		}
		return denied("iterative-reviewer", MsgNotAllowed)
	}},
	{name: "peer", eval: func(in Input) (Decision, bool) {
		if !in.Roles.Has(types.RoleSubmitter) {
			return pass()
		}
		if in.CallerFailedScreening {
			return denied("peer", MsgFailedScreening)
		}
		if in.Phase.ReviewConcluded() && in.CallerPassedScreening {
			return allowed("peer")
		}
		return denied("peer", MsgAnotherSubmitter)
	}},
}

var designRules = []rule{
	{name: "operator", eval: func(in Input) (Decision, bool) {
		if in.Roles.HasAny(designOperatorRoles...) {
			return allowed("operator")
		}
		return pass()
	}},
	{name: "owner", eval: func(in Input) (Decision, bool) {
		if in.CallerID == in.Submission.SubmitterID {
			return allowed("owner")
		}
		return pass()
	}},
	{name: "client", eval: func(in Input) (Decision, bool) {
		if !in.Roles.Has(types.RoleClientManager) {
			return pass()
		}
		if in.Original && !in.Submission.Purchased {
			return denied("client", MsgNotPurchased)
		}
		return allowed("client")
	}},
	{name: "screener", eval: func(in Input) (Decision, bool) {
		if !in.Roles.Has(types.RoleScreener) {
			return pass()
		}
		if in.Phase == types.PhaseScreening {
			return allowed("screener")
		}
		return denied("screener", MsgNotAllowedInPhase)
	}},
	{name: "reviewer", eval: func(in Input) (Decision, bool) {
		if !in.Roles.Has(types.RoleReviewer) {
			return pass()
		}
		if in.Phase == types.PhaseReview {
			return allowed("reviewer")
		}
		return denied("reviewer", MsgNotAllowedInPhase)
	}},
	{name: "gallery", eval: func(in Input) (Decision, bool) {
		if in.Original {
			return pass()
		}
		if in.Phase.ReviewConcluded() && in.SubmissionsViewable {
			return allowed("gallery")
		}
		return pass()
	}},
}

// Decide evaluates the download policy for one request. It is a pure
// function: everything it needs arrives in the input, and the same input
// always yields the same decision.
func Decide(in Input) Decision {
	rules := developRules
	if in.Track == types.TrackDesign {
		rules = designRules
	}

	for _, r := range rules {
		if decision, ok := r.eval(in); ok {
			return decision
		}
	}

	return Decision{Allowed: false, Rule: "default", Reason: MsgNotAllowedInPhase}
}
