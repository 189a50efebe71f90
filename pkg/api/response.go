// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"net/http"

	"gopkg.in/yaml.v3"
)

// ErrorResponse is the body of a failed request
type ErrorResponse struct {
	Error string `json:"error" yaml:"error"`
}

// WriteJSON writes v as json with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteYAML writes v as yaml with the given status code
func WriteYAML(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(status)
	enc := yaml.NewEncoder(w)
	_ = enc.Encode(v)
	_ = enc.Close()
}

// WriteError writes an ErrorResponse with the given status code
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}
