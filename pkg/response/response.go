// Package response writes the JSON envelope every endpoint speaks:
//
//	{ "success": bool, "message": string, "data": ..., "error": ... }
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/kirana/pkg/apperr"
)

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 with message and data.
func Success(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// Created sends a 201 with message and data.
func Created(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

// Fail sends a failure envelope with the given status.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: false, Message: message})
}

// FailWith sends a failure envelope carrying error detail.
func FailWith(w http.ResponseWriter, status int, message string, detail interface{}) {
	write(w, status, envelope{Success: false, Message: message, Error: detail})
}

// Unauthorized sends a 401 with detail, used by the auth gates.
func Unauthorized(w http.ResponseWriter, detail string) {
	FailWith(w, http.StatusUnauthorized, "Unauthorized Access", detail)
}

// FromError maps an error to the envelope using the apperr taxonomy.
// message describes the operation that failed ("Error while creating product").
func FromError(w http.ResponseWriter, message string, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		FailWith(w, http.StatusBadRequest, message, map[string]string{ve.Field: ve.Message})
	case errors.Is(err, apperr.ErrConflict):
		Fail(w, http.StatusConflict, message+": already exists")
	case errors.Is(err, apperr.ErrNotFound):
		Fail(w, http.StatusNotFound, message+": not found")
	case errors.Is(err, apperr.ErrInvalidToken), errors.Is(err, apperr.ErrUnauthorizedRole):
		Unauthorized(w, err.Error())
	default:
		// CodecError, CollaboratorError and anything unexpected surface as 500.
		FailWith(w, http.StatusInternalServerError, message, err.Error())
	}
}
