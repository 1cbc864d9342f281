package main

import (
	"fmt"
	"net/http"
	"testing"
)

func (s *ServerTestSuite) Test_DocumentDownload() {
	tests := []struct {
		name            string
		documentID      string
		query           string
		token           func(t *testing.T) string
		expectedStatus  int
		expectedBody    string
		expectedDetails string
		disposition     string
	}{
		{
			name:       "DownloadableDocument",
			documentID: "7001",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   documentBytes,
			disposition:    "attachment; filename=requirements.doc",
		},
		{
			name:       "MatchingChallengeID",
			documentID: "7001",
			query:      "?challengeId=30001",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   documentBytes,
		},
		{
			name:       "WrongChallengeID",
			documentID: "7001",
			query:      "?challengeId=40001",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedDetails: "Document does not belong to project with given challengeId",
		},
		{
			name:       "RestrictedDocument",
			documentID: "7002",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus:  http.StatusForbidden,
			expectedDetails: "You don't have permission to access this document",
		},
		{
			name:       "AdminDownloadsRestricted",
			documentID: "7002",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", true)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   documentBytes,
		},
		{
			name:       "UnknownDocument",
			documentID: "99999",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus:  http.StatusNotFound,
			expectedDetails: "Document not found",
		},
		{
			name:       "BadChallengeID",
			documentID: "7001",
			query:      "?challengeId=abc",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedDetails: "challengeId should be number.",
		},
		{
			name:       "NegativeChallengeID",
			documentID: "7001",
			query:      "?challengeId=-3",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedDetails: "challengeId should be positive.",
		},
		{
			name:       "NonNumericDocumentID",
			documentID: "abc",
			token: func(t *testing.T) string {
				return memberToken(t, userOutsider, "heffan", false)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedDetails: "documentId should be number.",
		},
		{
			name:            "Anonymous",
			documentID:      "7001",
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
				fmt.Sprintf("/v2/download/document/%s/%s", tt.documentID, tt.query),
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
