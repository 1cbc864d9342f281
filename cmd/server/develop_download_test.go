package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crowdforge/contest-api/cmd/server/internal/models"
)

func (s *ServerTestSuite) Test_DevelopDownload() {
	tests := []struct {
		name            string
		submissionID    string
		token           func(t *testing.T) string
		query           string
		expectedStatus  int
		expectedBody    string
		expectedDetails string
		disposition     string
	}{
		{
			name:         "OwnerDownloads",
			submissionID: "88821",
			token: func(t *testing.T) string {
				return memberToken(t, userSubmitter, "wishingbone", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   developJarBytes,
			disposition:    "attachment; filename=srm-solution.jar",
		},
		{
			name:         "ManagerSeesObfuscatedName",
			submissionID: "88821",
			token: func(t *testing.T) string {
				return memberToken(t, userManager, "liquid_user", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   developJarBytes,
			disposition:    "attachment; filename=88821.jar",
		},
		{
			name:         "ReviewerDuringReview",
			submissionID: "88821",
			token: func(t *testing.T) string {
				return memberToken(t, userReviewer, "hung", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   developJarBytes,
		},
		{
			name:         "ScreenerOutsideScreening",
			submissionID: "88821",
			token: func(t *testing.T) string {
				return memberToken(t, userScreener, "annej9ny", false)
			},
			expectedStatus:  http.StatusForbidden,
			expectedDetails: "You are not allowed to download the submission in this phase.",
		},
		{
			name:         "PeerBeforeReviewConcluded",
			submissionID: "88821",
			token: func(t *testing.T) string {
				return memberToken(t, userPeerPassed, "super", false)
			},
			expectedStatus:  http.StatusForbidden,
			expectedDetails: "You are not allowed to download another submitter's submission in this phase.",
		},
		{
			name:         "PeerAfterReviewConcluded",
			submissionID: "88841",
			token: func(t *testing.T) string {
				return memberToken(t, userPeerPassed, "super", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   developZipBytes,
			disposition:    "attachment; filename=88841.zip",
		},
		{
			name:         "OwnerKeepsSpacedName",
			submissionID: "88841",
			token: func(t *testing.T) string {
				return memberToken(t, userSubmitter, "wishingbone", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   developZipBytes,
			disposition:    `attachment; filename="Final Submission.zip"`,
		},
		{
			name:         "PeerFailedScreening",
			submissionID: "88841",
			token: func(t *testing.T) string {
				return memberToken(t, userPeerFailed, "sandking", false)
			},
			expectedStatus:  http.StatusForbidden,
			expectedDetails: "You are not allowed to download the submission because you did not pass screening.",
		},
		{
			name:         "OutsiderDenied",
			submissionID: "88821",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus:  http.StatusForbidden,
			expectedDetails: "You are not allowed to download the submission in this phase.",
		},
		{
			name:         "AdminDownloadsAnything",
			submissionID: "88821",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", true)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   developJarBytes,
		},
		{
			name:            "Anonymous",
			submissionID:    "88821",
			expectedStatus:  http.StatusUnauthorized,
			expectedDetails: "authentication required",
		},
		{
			name:         "DeletedHiddenFromOwner",
			submissionID: "88822",
			token: func(t *testing.T) string {
				return memberToken(t, userSubmitter, "wishingbone", false)
			},
			expectedStatus:  http.StatusNotFound,
			expectedDetails: "This submission has been deleted.",
		},
		{
			name:         "AdminSeesDeleted",
			submissionID: "88822",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", true)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   developJarBytes,
		},
		{
			name:         "UnknownSubmission",
			submissionID: "99999999",
			token: func(t *testing.T) string {
				return memberToken(t, userSubmitter, "wishingbone", false)
			},
			expectedStatus:  http.StatusNotFound,
			expectedDetails: "No such upload exists.",
		},
		{
			name:         "MissingUpload",
			submissionID: "88825",
			token: func(t *testing.T) string {
				return memberToken(t, userSubmitter, "wishingbone", false)
			},
			expectedStatus:  http.StatusNotFound,
			expectedDetails: "No such upload exists.",
		},
		{
			name:         "DesignSubmissionRejected",
			submissionID: "654021",
			token: func(t *testing.T) string {
				return memberToken(t, userDesigner, "flytoupper", false)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedDetails: "Non-Develop challenge submissions are not supported by this API.",
		},
		{
			name:         "MarathonSubmissionRejected",
			submissionID: "88851",
			token: func(t *testing.T) string {
				return memberToken(t, userSubmitter, "wishingbone", false)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedDetails: "Marathon Match and Spec Review submissions are not supported by this API.",
		},
		{
			name:         "NonNumericID",
			submissionID: "abc",
			token: func(t *testing.T) string {
				return memberToken(t, userSubmitter, "wishingbone", false)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedDetails: "submissionId should be number.",
		},
		{
			name:         "IDPastInt32",
			submissionID: "2147483648",
			token: func(t *testing.T) string {
				return memberToken(t, userSubmitter, "wishingbone", false)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedDetails: "submissionId should be less or equal to 2147483647.",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			token := ""
			if tt.token != nil {
				token = tt.token(s.T())
			}

			resp := s.get(
				fmt.Sprintf("/v2/develop/download/%s/%s", tt.submissionID, tt.query),
				token,
			)

			s.Equal(tt.expectedStatus, resp.code, "incorrect status code")

			if tt.expectedBody != "" {
				s.Equal(tt.expectedBody, resp.body, "incorrect file bytes")
				assertNoEnvelope(s.T(), resp.body)
			}
			if tt.expectedDetails != "" {
				s.Equal(tt.expectedDetails, errorDetails(s.T(), resp.body))
			}
			if tt.disposition != "" {
				s.Equal(tt.disposition, resp.disposition)
			}
		})
	}
}

func (s *ServerTestSuite) Test_DevelopDownloadIterativeReviewer() {
	token := memberToken(s.T(), userIterReviewer, "cartajs", false)

	s.Run("AlreadyReviewed", func() {
		resp := s.get("/v2/develop/download/88831/", token)

		s.Equal(http.StatusOK, resp.code)
		s.Equal(developZipBytes, resp.body)
	})

	s.Run("NextInQueue", func() {
		resp := s.get("/v2/develop/download/88834/", token)

		s.Equal(http.StatusOK, resp.code)
		s.Equal(developZipBytes, resp.body)
	})

	s.Run("NotYetReached", func() {
		resp := s.get("/v2/develop/download/88835/", token)

		s.Equal(http.StatusForbidden, resp.code)
		s.Equal(
			"You are not allowed to download this submission.",
			errorDetails(s.T(), resp.body),
		)
	})
}

func (s *ServerTestSuite) Test_DevelopDownloadAudit() {
	s.Run("AllowedAttemptRecorded", func() {
		token := memberToken(s.T(), userSubmitter, "wishingbone", false)

		resp := s.get("/v2/develop/download/88821/", token)
		s.Equal(http.StatusOK, resp.code)

		s.Equal(int64(1), s.auditRows(subDevelop.ID, userSubmitter, true))
		s.Equal(int64(0), s.auditRows(subDevelop.ID, userSubmitter, false))
	})

	s.Run("DeniedAttemptRecorded", func() {
		token := memberToken(s.T(), userPeerPassed, "super", false)

		resp := s.get("/v2/develop/download/88821/", token)
		s.Equal(http.StatusForbidden, resp.code)

		s.Equal(int64(1), s.auditRows(subDevelop.ID, userPeerPassed, false))
	})

	s.Run("ValidationFailureLeavesNoRow", func() {
		token := memberToken(s.T(), userSubmitter, "wishingbone", false)

		resp := s.get("/v2/develop/download/99999999/", token)
		s.Equal(http.StatusNotFound, resp.code)

		s.Equal(int64(0), s.auditRows(99999999, userSubmitter, true))
		s.Equal(int64(0), s.auditRows(99999999, userSubmitter, false))
	})
}

func (s *ServerTestSuite) Test_DevelopDownloadThurgood() {
	creds := fmt.Sprintf("?username=%s&password=%s", thurgoodUsername, thurgoodPassword)

	s.Run("DownloadsAnySubmission", func() {
		resp := s.get("/v2/develop/download/88821/"+creds, "")

		s.Equal(http.StatusOK, resp.code)
		s.Equal(developJarBytes, resp.body)
		s.Equal("attachment; filename=88821.jar", resp.disposition)
	})

	s.Run("LeavesNoAuditTrail", func() {
		resp := s.get("/v2/develop/download/88821/"+creds, "")
		s.Equal(http.StatusOK, resp.code)

		var count int64
		err := s.tx.Model(&models.DownloadAudit{}).
			Where("upload_id = ?", subDevelop.ID).
			Count(&count).Error
		s.Require().NoError(err)
		s.Equal(int64(0), count, "service account downloads are not audited")
	})

	s.Run("WrongPassword", func() {
		resp := s.get(
			fmt.Sprintf("/v2/develop/download/88821/?username=%s&password=wrong", thurgoodUsername),
			"",
		)

		s.Equal(http.StatusUnauthorized, resp.code)
		assert.Equal(s.T(), "authentication required", errorDetails(s.T(), resp.body))
	})

	s.Run("NotAcceptedOnDesignRoute", func() {
		resp := s.get("/v2/design/download/654021/"+creds, "")
		s.Equal(http.StatusUnauthorized, resp.code)
	})
}
