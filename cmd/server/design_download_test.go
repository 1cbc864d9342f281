package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/crowdforge/contest-api/cmd/server/internal/models"
)

func (s *ServerTestSuite) Test_DesignDownload() {
	tests := []struct {
		name            string
		submissionID    string
		query           string
		token           func(t *testing.T) string
		expectedStatus  int
		expectedBody    string
		expectedDetails string
		disposition     string
	}{
		{
			name:         "OwnerDownloadsOriginal",
			submissionID: "654021",
			query:        "?submissionType=original",
			token: func(t *testing.T) string {
				return memberToken(t, userDesigner, "flytoupper", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   designZipBytes,
			disposition:    `inline; filename="winning entry.Zip"`,
		},
		{
			name:         "ManagerSeesObfuscatedName",
			submissionID: "654021",
			query:        "?submissionType=original",
			token: func(t *testing.T) string {
				return memberToken(t, userManager, "liquid_user", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   designZipBytes,
			disposition:    "inline; filename=654021.zip",
		},
		{
			name:         "ClientOriginalNotPurchased",
			submissionID: "654021",
			query:        "?submissionType=original",
			token: func(t *testing.T) string {
				return memberToken(t, userClient, "applemo", false)
			},
			expectedStatus:  http.StatusForbidden,
			expectedDetails: "You are not allowed to download the original submission because it has not been purchased.",
		},
		{
			name:         "ClientOriginalPurchased",
			submissionID: "654022",
			query:        "?submissionType=original",
			token: func(t *testing.T) string {
				return memberToken(t, userClient, "applemo", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   designZipBytes,
			disposition:    "inline; filename=654022.zip",
		},
		{
			name:         "ClientBareRequestGetsPreview",
			submissionID: "654021",
			token: func(t *testing.T) string {
				return memberToken(t, userClient, "applemo", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   designImageBytes,
		},
		{
			name:         "ClientPreviewOfUnpurchased",
			submissionID: "654021",
			query:        "?submissionType=preview",
			token: func(t *testing.T) string {
				return memberToken(t, userClient, "applemo", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   designImageBytes,
		},
		{
			name:         "GalleryBareRequestAfterReview",
			submissionID: "654021",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   designImageBytes,
		},
		{
			name:         "GallerySmallAfterReview",
			submissionID: "654021",
			query:        "?submissionType=small",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   designImageBytes,
			disposition:    "inline; filename=654021.png",
		},
		{
			name:         "GalleryNeverCoversOriginals",
			submissionID: "654021",
			query:        "?submissionType=original",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus:  http.StatusForbidden,
			expectedDetails: "You are not allowed to download the submission in this phase.",
		},
		{
			name:         "HiddenGalleryDenied",
			submissionID: "654031",
			query:        "?submissionType=preview",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus:  http.StatusForbidden,
			expectedDetails: "You are not allowed to download the submission in this phase.",
		},
		{
			name:         "ExplicitImageType",
			submissionID: "654021",
			query:        "?submissionImageTypeId=31",
			token: func(t *testing.T) string {
				return memberToken(t, userManager, "liquid_user", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   designImageBytes,
			disposition:    "inline; filename=654021.png",
		},
		{
			name:         "ImageTypeWithNoStoredRender",
			submissionID: "654022",
			query:        "?submissionImageTypeId=29",
			token: func(t *testing.T) string {
				return memberToken(t, userManager, "liquid_user", false)
			},
			expectedStatus:  http.StatusNotFound,
			expectedDetails: "No such upload exists.",
		},
		{
			name:         "FileIndexPastTheEnd",
			submissionID: "654021",
			query:        "?submissionImageTypeId=31&submissionFileIndex=2",
			token: func(t *testing.T) string {
				return memberToken(t, userManager, "liquid_user", false)
			},
			expectedStatus:  http.StatusNotFound,
			expectedDetails: "No such upload exists.",
		},
		{
			name:         "UnsupportedImageType",
			submissionID: "654021",
			query:        "?submissionImageTypeId=27",
			token: func(t *testing.T) string {
				return memberToken(t, userManager, "liquid_user", false)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedDetails: "submissionImageTypeId is not supported.",
		},
		{
			name:         "BadSubmissionType",
			submissionID: "654021",
			query:        "?submissionType=tiny",
			token: func(t *testing.T) string {
				return memberToken(t, userManager, "liquid_user", false)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedDetails: "submissionType should be an element of original,preview,small.",
		},
		{
			name:         "UnknownSubmission",
			submissionID: "99999999",
			token: func(t *testing.T) string {
				return memberToken(t, userDesigner, "flytoupper", false)
			},
			expectedStatus:  http.StatusNotFound,
			expectedDetails: "No such submission exists.",
		},
		{
			name:         "DevelopSubmissionRejected",
			submissionID: "88821",
			token: func(t *testing.T) string {
				return memberToken(t, userSubmitter, "wishingbone", false)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedDetails: "Non-Design challenge submissions are not supported by this API.",
		},
		{
			name:            "Anonymous",
			submissionID:    "654021",
			expectedStatus:  http.StatusUnauthorized,
			expectedDetails: "authentication required",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			token := ""
			if tt.token != nil {
				token = tt.token(s.T())
			}

			resp := s.get(
				fmt.Sprintf("/v2/design/download/%s/%s", tt.submissionID, tt.query),
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

func (s *ServerTestSuite) Test_DesignDownloadLeavesNoAuditRows() {
	token := memberToken(s.T(), userManager, "liquid_user", false)

	resp := s.get("/v2/design/download/654021/", token)
	s.Equal(http.StatusOK, resp.code)

	var count int64
	err := s.tx.Model(&models.DownloadAudit{}).Count(&count).Error
	s.Require().NoError(err)
	s.Equal(int64(0), count, "design downloads are not written to the develop audit table")
}
