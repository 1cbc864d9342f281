package types

// Track is the contest category a challenge belongs to. It decides which
// download API and which rule set applies to the challenge's submissions.
type Track string

const (
	TrackDevelop    Track = "DEVELOP"
	TrackDesign     Track = "DESIGN"
	TrackMarathon   Track = "MARATHON"
	TrackSpecReview Track = "SPEC_REVIEW"
)

// Phase is a time-boxed stage of a contest round. Values are ordered:
// a phase compares greater than every phase that precedes it in the round.
// The checkpoint phases run early, in parallel with the main submission
// window, for checkpoint-enabled rounds.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseRegistration
	PhaseSubmission
	PhaseCheckpointScreening
	PhaseCheckpointReview
	PhaseScreening
	PhaseReview
	PhaseAppeals
	PhaseAppealsResponse
	PhaseAggregation
	PhaseFinalFix
	PhaseFinalReview
	PhaseApproval
	PhasePostMortem
	PhaseComplete
)

var phaseNames = map[Phase]string{
	PhaseNone:                "NONE",
	PhaseRegistration:        "REGISTRATION",
	PhaseSubmission:          "SUBMISSION",
	PhaseCheckpointScreening: "CHECKPOINT_SCREENING",
	PhaseCheckpointReview:    "CHECKPOINT_REVIEW",
	PhaseScreening:           "SCREENING",
	PhaseReview:              "REVIEW",
	PhaseAppeals:             "APPEALS",
	PhaseAppealsResponse:     "APPEALS_RESPONSE",
	PhaseAggregation:         "AGGREGATION",
	PhaseFinalFix:            "FINAL_FIX",
	PhaseFinalReview:         "FINAL_REVIEW",
	PhaseApproval:            "APPROVAL",
	PhasePostMortem:          "POST_MORTEM",
	PhaseComplete:            "COMPLETE",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "UNKNOWN"
}

// ReviewConcluded reports whether the round has moved past the
// review/appeals cycle. Peer visibility of submissions opens up here.
func (p Phase) ReviewConcluded() bool {
	return p >= PhaseAggregation
}

// Role is a challenge-scoped capability tag held by a principal.
type Role string

const (
	RoleSubmitter          Role = "SUBMITTER"
	RoleScreener           Role = "SCREENER"
	RoleReviewer           Role = "REVIEWER"
	RoleIterativeReviewer  Role = "ITERATIVE_REVIEWER"
	RoleCheckpointScreener Role = "CHECKPOINT_SCREENER"
	RoleCheckpointReviewer Role = "CHECKPOINT_REVIEWER"
	RolePostMortemReviewer Role = "POST_MORTEM_REVIEWER"
	RoleCopilot            Role = "COPILOT"
	RoleManager            Role = "MANAGER"
	RoleClientManager      Role = "CLIENT_MANAGER"
	RoleStudioAdmin        Role = "STUDIO_ADMIN"
	RoleViewAllSubmissions Role = "VIEW_ALL_SUBMISSIONS"
)

// RoleSet is the set of roles one principal holds on one challenge. It is
// computed per request and never persisted on the principal.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

func (s RoleSet) Add(role Role) {
	s[role] = struct{}{}
}

func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

func (s RoleSet) HasAny(roles ...Role) bool {
	for _, role := range roles {
		if s.Has(role) {
			return true
		}
	}
	return false
}

// SubmissionCategory distinguishes the kind of upload a submission row is.
type SubmissionCategory string

const (
	CategoryContest    SubmissionCategory = "CONTEST"
	CategoryCheckpoint SubmissionCategory = "CHECKPOINT"
	CategoryFinalFix   SubmissionCategory = "FINAL_FIX"
	CategoryTestCase   SubmissionCategory = "TEST_CASE"
)

// SubmissionType is the symbolic download variant for design submissions.
type SubmissionType string

const (
	SubmissionTypeOriginal SubmissionType = "original"
	SubmissionTypePreview  SubmissionType = "preview"
	SubmissionTypeSmall    SubmissionType = "small"
)

// Gallery image type identifiers for design submissions. 25/26/28 are the
// plain tiny/small/full renditions, 29/30/31 the watermarked
// small/medium/full ones. The plain medium rendition (27) exists in
// storage but is not exposed through the download API.
const (
	ImageTypeTinyPlain         = 25
	ImageTypeSmallPlain        = 26
	ImageTypeFullPlain         = 28
	ImageTypeSmallWatermarked  = 29
	ImageTypeMediumWatermarked = 30
	ImageTypeFullWatermarked   = 31
)

var validImageTypeIDs = map[int]struct{}{
	ImageTypeTinyPlain:         {},
	ImageTypeSmallPlain:        {},
	ImageTypeFullPlain:         {},
	ImageTypeSmallWatermarked:  {},
	ImageTypeMediumWatermarked: {},
	ImageTypeFullWatermarked:   {},
}

// ValidImageTypeID reports whether id names a gallery image type that the
// download API serves.
func ValidImageTypeID(id int) bool {
	_, ok := validImageTypeIDs[id]
	return ok
}
