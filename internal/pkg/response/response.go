package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error envelope returned to callers. Error carries a
// stable machine-readable code; Detail is a human-readable message or, for
// validation failures, a list of field errors.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail any    `json:"detail"`
}

// FieldError identifies a single invalid or missing field by path.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Can't change response at this point, just log
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Error writes an error envelope with a machine-readable code
func Error(w http.ResponseWriter, status int, code, detail string) {
	JSON(w, status, ErrorResponse{Error: code, Detail: detail})
}

// ValidationError writes a 422 envelope listing the offending fields by path
func ValidationError(w http.ResponseWriter, fields ...FieldError) {
	JSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:  "VALIDATION_ERROR",
		Detail: fields,
	})
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created response
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}
