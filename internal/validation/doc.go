// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package validation provides struct validation using go-playground/validator v10.

It wraps the library in a thread-safe singleton with human-readable
error translation and an APIError conversion matching the HTTP layer's
error envelope.

Beyond the built-in tags, two custom validators are registered:

  - movie_id: a non-empty catalog identifier without whitespace
  - title_list: a semicolon-separated favorites list with at least one
    non-blank segment

Example:

	type MessageRequest struct {
	    UserID string `validate:"required,min=1,max=128"`
	    Text   string `validate:"required,max=2000"`
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
	    apiErr := verr.ToAPIError()
	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message)
	    return
	}
*/
package validation
