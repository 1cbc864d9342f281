package v2

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdforge/contest-api/internal/types"
)

func requestContext(t *testing.T, target string) echo.Context {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec)
}

func pathContext(t *testing.T, param string, value string) echo.Context {
	t.Helper()

	c := requestContext(t, "/")
	c.SetParamNames(param)
	c.SetParamValues(value)

	return c
}

func TestPathID(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		id, err := pathID(pathContext(t, "submissionId", "88821"), "submissionId")
		require.NoError(t, err)
		assert.Equal(t, int64(88821), id)
	})

	t.Run("NotANumber", func(t *testing.T) {
		_, err := pathID(pathContext(t, "submissionId", "abc"), "submissionId")

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Equal(t, "submissionId should be number.", httpErr.Message)
	})

	t.Run("Negative", func(t *testing.T) {
		_, err := pathID(pathContext(t, "submissionId", "-1"), "submissionId")

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Equal(t, "submissionId should be positive.", httpErr.Message)
	})

	t.Run("Zero", func(t *testing.T) {
		_, err := pathID(pathContext(t, "submissionId", "0"), "submissionId")

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, "submissionId should be positive.", httpErr.Message)
	})

	t.Run("PastInt32", func(t *testing.T) {
		_, err := pathID(pathContext(t, "documentId", "2147483648"), "documentId")

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Equal(t, "documentId should be less or equal to 2147483647.", httpErr.Message)
	})

	t.Run("ParamNameInMessage", func(t *testing.T) {
		_, err := pathID(pathContext(t, "documentId", "xyz"), "documentId")

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, "documentId should be number.", httpErr.Message)
	})
}

func TestParseDesignQuery(t *testing.T) {
	t.Run("DefaultsToPreview", func(t *testing.T) {
		q, err := parseDesignQuery(requestContext(t, "/"))
		require.NoError(t, err)
		assert.Equal(t, types.SubmissionTypePreview, q.Type)
		assert.Equal(t, 0, q.ImageTypeID)
		assert.Equal(t, 1, q.FileIndex)
	})

	t.Run("AllParams", func(t *testing.T) {
		q, err := parseDesignQuery(requestContext(
			t,
			"/?submissionType=preview&submissionImageTypeId=31&submissionFileIndex=2",
		))
		require.NoError(t, err)
		assert.Equal(t, types.SubmissionTypePreview, q.Type)
		assert.Equal(t, 31, q.ImageTypeID)
		assert.Equal(t, 2, q.FileIndex)
	})

	t.Run("BadType", func(t *testing.T) {
		_, err := parseDesignQuery(requestContext(t, "/?submissionType=tiny"))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Equal(
			t,
			"submissionType should be an element of original,preview,small.",
			httpErr.Message,
		)
	})

	t.Run("ImageTypeNotANumber", func(t *testing.T) {
		_, err := parseDesignQuery(requestContext(t, "/?submissionImageTypeId=full"))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, "submissionImageTypeId should be number.", httpErr.Message)
	})

	t.Run("ImageTypeNegative", func(t *testing.T) {
		_, err := parseDesignQuery(requestContext(t, "/?submissionImageTypeId=-5"))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, "submissionImageTypeId should be positive.", httpErr.Message)
	})

	t.Run("ImageTypeUnsupported", func(t *testing.T) {
		// 27 exists in the legacy catalog but is never exposed here.
		_, err := parseDesignQuery(requestContext(t, "/?submissionImageTypeId=27"))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, "submissionImageTypeId is not supported.", httpErr.Message)
	})

	t.Run("FileIndexNotANumber", func(t *testing.T) {
		_, err := parseDesignQuery(requestContext(t, "/?submissionFileIndex=first"))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, "submissionFileIndex should be number.", httpErr.Message)
	})

	t.Run("FileIndexZero", func(t *testing.T) {
		_, err := parseDesignQuery(requestContext(t, "/?submissionFileIndex=0"))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, "submissionFileIndex should be positive.", httpErr.Message)
	})

	t.Run("ExplicitImageTypeKeepsType", func(t *testing.T) {
		q, err := parseDesignQuery(requestContext(t, "/?submissionImageTypeId=29"))
		require.NoError(t, err)
		assert.Equal(t, types.SubmissionTypePreview, q.Type)
		assert.Equal(t, 29, q.ImageTypeID)
	})
}
