package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env.Error
}

func TestRespondErrHidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondErr(c, errors.New("pq: connection refused to 10.0.0.3"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", rec.Code)
	}
	if got := decodeEnvelope(t, rec); got.Message != "internal error" || got.Code != "internal" {
		t.Fatalf("envelope: %+v", got)
	}
	if len(c.Errors) != 1 {
		t.Fatalf("cause not kept on context: %v", c.Errors)
	}
}

func TestRespondErrKeepsDomainMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondErr(c, domainagg.NewError(domainagg.CodeInvalidTransition, "progress.complete_day", "day 3 is not the current day", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: want=422 got=%d", rec.Code)
	}
	if got := decodeEnvelope(t, rec); got.Message != "day 3 is not the current day" || got.Code != "invalid_transition" {
		t.Fatalf("envelope: %+v", got)
	}
	if len(c.Errors) != 0 {
		t.Fatalf("client errors should not be recorded: %v", c.Errors)
	}
}

func TestBadRequestRecordsBinderError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	BadRequest(c, errors.New("json: cannot unmarshal string into Go struct field .rating of type int"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
	if got := decodeEnvelope(t, rec); got.Message != "invalid request body" || got.Code != "validation" {
		t.Fatalf("envelope: %+v", got)
	}
	if len(c.Errors.ByType(gin.ErrorTypeBind)) != 1 {
		t.Fatalf("binder error missing: %v", c.Errors)
	}
}
