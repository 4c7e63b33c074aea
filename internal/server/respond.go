// internal/server/respond.go
package server

import (
	"encoding/json"
	"net/http"

	"campaign-forecaster/internal/common/errors"
)

type errorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	std := errors.AsStandard(err)
	writeJSON(w, errors.HTTPStatus(std.Code), errorResponse{
		Error: errorBody{
			Code:    string(std.Code),
			Message: std.Message,
			Details: std.Details,
			Meta:    std.Metadata,
		},
	})
}
