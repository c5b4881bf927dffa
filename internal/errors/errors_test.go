package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMap(t *testing.T) {
	cases := []struct {
		name   string
		in     error
		kind   Kind
		status int
	}{
		{"classified passes through", NotFound("Match not found"), KindNotFound, http.StatusNotFound},
		{"wrapped classified", fmt.Errorf("ctx: %w", Forbidden("Forbidden")), KindAuthorization, http.StatusForbidden},
		{"gorm not found", fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), KindNotFound, http.StatusNotFound},
		{"duplicate key", gorm.ErrDuplicatedKey, KindConflict, http.StatusConflict},
		{"deadline", context.DeadlineExceeded, KindInternal, http.StatusInternalServerError},
		{"anything else", fmt.Errorf("dial tcp: refused"), KindInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Map(tc.in)
			require.True(t, Is(err, tc.kind))

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tc.status, e.Status())
		})
	}

	assert.NoError(t, Map(nil))
}

func TestMap_HidesInternalDetail(t *testing.T) {
	err := Map(fmt.Errorf("Error 1146: Table 'spark.users' doesn't exist"))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "internal error", e.Message)
	assert.Contains(t, e.Error(), "1146") // still available to logs
}

func TestWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Write(c, InvalidArgument("Invalid input"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid input", body["message"])
	assert.Equal(t, string(KindValidation), body["code"])
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(Unauthenticated("Invalid credentials")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(gorm.ErrRecordNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(AlreadyExists("Email already in use")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("boom")))
}
