// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package validation

import (
	"strings"
	"testing"
)

type messageRequest struct {
	UserID string `validate:"required,min=1,max=128"`
	Text   string `validate:"required,max=2000"`
}

type favoritesRequest struct {
	Titles string `validate:"required,title_list"`
}

type choiceRequest struct {
	MovieID string `validate:"required,movie_id"`
}

func TestValidateStructPasses(t *testing.T) {
	t.Parallel()

	req := messageRequest{UserID: "alice", Text: "/start"}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStructRequired(t *testing.T) {
	t.Parallel()

	req := messageRequest{}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want errors")
	}
	if len(err.Errors()) != 2 {
		t.Errorf("Errors() = %d, want 2", len(err.Errors()))
	}
	if !strings.Contains(err.Error(), "UserID is required") {
		t.Errorf("Error() = %q, missing required message", err.Error())
	}
}

func TestMovieIDValidator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"imdb style id", "tt0001", false},
		{"opaque id", "movie-42", false},
		{"embedded space", "tt 0001", true},
		{"embedded newline", "tt\n0001", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&choiceRequest{MovieID: tt.id})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestTitleListValidator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		titles  string
		wantErr bool
	}{
		{"single title", "Inception", false},
		{"multiple titles", "Inception; Up; Alien", false},
		{"blank segments around one title", "; Up ;", false},
		{"only separators", ";;;", true},
		{"only whitespace segments", " ; ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&favoritesRequest{Titles: tt.titles})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct(%q) error = %v, wantErr %v", tt.titles, err, tt.wantErr)
			}
		})
	}
}

func TestToAPIErrorSingleField(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&choiceRequest{MovieID: "bad id"})
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details["field"] != "MovieID" {
		t.Errorf("Details[field] = %v, want MovieID", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultipleFields(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&messageRequest{})
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want errors")
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] type = %T", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("fields = %d, want 2", len(fields))
	}
}
