// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// maxRequestBody caps inbound JSON bodies. Conversational messages are
// tiny; anything near this limit is abuse.
const maxRequestBody = 64 << 10 // 64KB

// MessageRequest is the body of POST /api/v1/messages.
type MessageRequest struct {
	UserID string `json:"user_id" validate:"required,min=1,max=128"`
	Text   string `json:"text" validate:"required,max=2000"`
}

// ChoiceRequest is the body of POST /api/v1/choices. Token is either a
// mode token or a movie identifier from a presented choice.
type ChoiceRequest struct {
	UserID string `json:"user_id" validate:"required,min=1,max=128"`
	Token  string `json:"token" validate:"required,movie_id"`
}

// decodeJSON reads and unmarshals a request body into dst. Unknown
// fields are rejected so client typos surface as errors instead of
// silently dropped fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}

	// A second document in the body is as malformed as none.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}

	return nil
}
