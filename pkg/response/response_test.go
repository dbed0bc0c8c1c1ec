package response_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/kirana/pkg/apperr"
	"github.com/shashiranjanraj/kirana/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid envelope JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Success(rec, "All categories", []string{"books"})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	body := decode(t, rec)
	if body["success"] != true {
		t.Error("success should be true")
	}
	if body["message"] != "All categories" {
		t.Errorf("message = %v", body["message"])
	}
	if body["data"] == nil {
		t.Error("data missing")
	}
}

func TestCreatedStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Created(rec, "Product created", nil)
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestFromErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Required("name"), http.StatusBadRequest},
		{"conflict", fmt.Errorf("insert: %w", apperr.ErrConflict), http.StatusConflict},
		{"not found", fmt.Errorf("lookup: %w", apperr.ErrNotFound), http.StatusNotFound},
		{"invalid token", apperr.ErrInvalidToken, http.StatusUnauthorized},
		{"role", apperr.ErrUnauthorizedRole, http.StatusUnauthorized},
		{"collaborator", fmt.Errorf("gateway: %w", apperr.ErrCollaborator), http.StatusInternalServerError},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			response.FromError(rec, "Operation failed", tc.err)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
			if body := decode(t, rec); body["success"] != false {
				t.Error("success should be false")
			}
		})
	}
}

func TestValidationDetailCarriesField(t *testing.T) {
	rec := httptest.NewRecorder()
	response.FromError(rec, "Error while creating product", apperr.Validation("photo", "must be less than 1mb"))

	body := decode(t, rec)
	detail, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("detail shape: %T", body["error"])
	}
	if detail["photo"] != "must be less than 1mb" {
		t.Errorf("detail = %v", detail)
	}
}

func TestUnauthorizedMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Unauthorized(rec, "missing token")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
	if body := decode(t, rec); body["message"] != "Unauthorized Access" {
		t.Errorf("message = %v", body["message"])
	}
}
