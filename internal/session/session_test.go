// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/filmwise/filmwise/internal/catalog"
	"github.com/filmwise/filmwise/internal/recommend"
	"github.com/filmwise/filmwise/internal/tags"
)

// splitExtractor tags every whitespace-separated word of the text.
type splitExtractor struct{}

func (splitExtractor) Extract(text string) tags.Set {
	return tags.NewSet(strings.Fields(strings.ToLower(text))...)
}

type sentText struct {
	userID string
	text   string
}

type sentChoices struct {
	userID  string
	prompt  string
	choices []Choice
}

// mockMessenger records deliveries and can fail at a given 1-based call
// index to exercise the no-partial-mutation guarantee.
type mockMessenger struct {
	mu      sync.Mutex
	texts   []sentText
	choices []sentChoices
	calls   int
	failAt  int
}

var errDelivery = errors.New("delivery failed")

func (m *mockMessenger) SendText(_ context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failAt > 0 && m.calls >= m.failAt {
		return errDelivery
	}
	m.texts = append(m.texts, sentText{userID: userID, text: text})
	return nil
}

func (m *mockMessenger) PresentChoices(_ context.Context, userID, prompt string, choices []Choice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failAt > 0 && m.calls >= m.failAt {
		return errDelivery
	}
	m.choices = append(m.choices, sentChoices{userID: userID, prompt: prompt, choices: choices})
	return nil
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	rows := []catalog.RawMovieRow{
		{ID: "tt0001", OriginalTitle: "Inception", Year: "2010", Country: "USA", Description: "dream heist layers", VoteAverage: 8.8},
		{ID: "tt0002", OriginalTitle: "Up", Year: "2009", Country: "USA", Description: "balloons adventure grief", VoteAverage: 8.3},
		{ID: "tt0003", OriginalTitle: "Up", Year: "1976", Country: "USA", Description: "satire desert chase", VoteAverage: 6.1},
		{ID: "tt0004", OriginalTitle: "Alien", Year: "1979", Country: "USA", Description: "space horror crew", VoteAverage: 8.5},
		{ID: "tt0005", OriginalTitle: "Paprika", Year: "2006", Country: "Japan", Description: "dream layers science", VoteAverage: 7.7},
	}
	cat, err := catalog.New(rows, splitExtractor{})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

func testSession(t *testing.T, m Messenger) *Session {
	t.Helper()
	matcher, err := recommend.NewMatcher(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}
	return New("u1", testCatalog(t), matcher, splitExtractor{}, m, zerolog.Nop())
}

// enterMode drives a fresh session into the given mode through the
// public event surface.
func enterMode(t *testing.T, s *Session, token string) {
	t.Helper()
	if err := s.HandleChoice(context.Background(), token); err != nil {
		t.Fatalf("HandleChoice(%s) error = %v", token, err)
	}
}

func TestStartPresentsModeMenu(t *testing.T) {
	t.Parallel()

	m := &mockMessenger{}
	s := testSession(t, m)

	if err := s.HandleText(context.Background(), "/start"); err != nil {
		t.Fatalf("HandleText(/start) error = %v", err)
	}
	if s.Mode() != ModeAwaitingModeChoice {
		t.Errorf("Mode() = %s, want %s", s.Mode(), ModeAwaitingModeChoice)
	}
	if len(m.choices) != 1 {
		t.Fatalf("PresentChoices calls = %d, want 1", len(m.choices))
	}
	got := m.choices[0]
	if got.prompt != "Please choose a mode first" {
		t.Errorf("prompt = %q", got.prompt)
	}
	if len(got.choices) != 2 {
		t.Fatalf("choices = %d, want 2", len(got.choices))
	}
	if got.choices[0].Token != TokenModeDescription || got.choices[1].Token != TokenModeFavorites {
		t.Errorf("choice tokens = %q, %q", got.choices[0].Token, got.choices[1].Token)
	}
}

func TestModeChoiceTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		token      string
		wantMode   Mode
		wantPrompt string
	}{
		{"description", TokenModeDescription, ModeAwaitingDescription, "Write film themes you are interested in"},
		{"favorites", TokenModeFavorites, ModeAwaitingFavorites, "Write a few of your favourite films, separated by semicolumn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := &mockMessenger{}
			s := testSession(t, m)

			enterMode(t, s, tt.token)
			if s.Mode() != tt.wantMode {
				t.Errorf("Mode() = %s, want %s", s.Mode(), tt.wantMode)
			}
			if len(m.texts) != 1 || m.texts[0].text != tt.wantPrompt {
				t.Errorf("sent texts = %+v, want single %q", m.texts, tt.wantPrompt)
			}
		})
	}
}

func TestDescriptionFlowAnswers(t *testing.T) {
	t.Parallel()

	m := &mockMessenger{}
	s := testSession(t, m)
	enterMode(t, s, TokenModeDescription)

	if err := s.HandleText(context.Background(), "dream heist layers"); err != nil {
		t.Fatalf("HandleText() error = %v", err)
	}

	reply := m.texts[len(m.texts)-1].text
	if !strings.Contains(reply, "Inception (2010, USA)") {
		t.Errorf("reply missing Inception rendering: %q", reply)
	}
	if strings.Contains(reply, "Alien") {
		t.Errorf("reply contains zero-overlap movie: %q", reply)
	}

	// A completed answer resets the session.
	if s.Mode() != ModeIdle {
		t.Errorf("Mode() = %s, want %s", s.Mode(), ModeIdle)
	}
	if s.st.queryTags.Len() != 0 || len(s.st.exclusionIDs) != 0 || len(s.st.pending) != 0 {
		t.Errorf("state not cleared after answer: %+v", s.st)
	}
}

func TestDescriptionFlowNoMatch(t *testing.T) {
	t.Parallel()

	m := &mockMessenger{}
	s := testSession(t, m)
	enterMode(t, s, TokenModeDescription)

	if err := s.HandleText(context.Background(), "zebra unicorn"); err != nil {
		t.Fatalf("HandleText() error = %v", err)
	}
	if got := m.texts[len(m.texts)-1].text; got != "No such movies in base" {
		t.Errorf("reply = %q, want no-match message", got)
	}
	if s.Mode() != ModeIdle {
		t.Errorf("Mode() = %s, want %s", s.Mode(), ModeIdle)
	}
}

func TestFavoritesFlowExcludesNamedMovies(t *testing.T) {
	t.Parallel()

	m := &mockMessenger{}
	s := testSession(t, m)
	enterMode(t, s, TokenModeFavorites)

	if err := s.HandleText(context.Background(), "Inception"); err != nil {
		t.Fatalf("HandleText() error = %v", err)
	}

	reply := m.texts[len(m.texts)-1].text
	if strings.Contains(reply, "Inception") {
		t.Errorf("named favorite recommended back: %q", reply)
	}
	if !strings.Contains(reply, "Paprika") {
		t.Errorf("reply missing tag-overlapping movie: %q", reply)
	}
	if s.Mode() != ModeIdle {
		t.Errorf("Mode() = %s, want %s", s.Mode(), ModeIdle)
	}
}

func TestFavoritesUnknownTitle(t *testing.T) {
	t.Parallel()

	m := &mockMessenger{}
	s := testSession(t, m)
	enterMode(t, s, TokenModeFavorites)

	if err := s.HandleText(context.Background(), "Nonexistent"); err != nil {
		t.Fatalf("HandleText() error = %v", err)
	}

	var sawUnknown bool
	for _, msg := range m.texts {
		if msg.text == "No movies named 'Nonexistent' in base" {
			sawUnknown = true
		}
	}
	if !sawUnknown {
		t.Errorf("missing unknown-title message, got %+v", m.texts)
	}
	// The turn still completes with an (empty) answer.
	if got := m.texts[len(m.texts)-1].text; got != "No such movies in base" {
		t.Errorf("final reply = %q, want no-match message", got)
	}
	if s.Mode() != ModeIdle {
		t.Errorf("Mode() = %s, want %s", s.Mode(), ModeIdle)
	}
}

func TestFavoritesAmbiguousTitleEntersClarifying(t *testing.T) {
	t.Parallel()

	m := &mockMessenger{}
	s := testSession(t, m)
	enterMode(t, s, TokenModeFavorites)

	if err := s.HandleText(context.Background(), "Inception; Up; Up"); err != nil {
		t.Fatalf("HandleText() error = %v", err)
	}

	if s.Mode() != ModeClarifying {
		t.Fatalf("Mode() = %s, want %s", s.Mode(), ModeClarifying)
	}
	if _, ok := s.st.exclusionIDs["tt0001"]; !ok {
		t.Errorf("Inception id not excluded immediately")
	}
	if !s.st.queryTags.Has("heist") {
		t.Errorf("Inception tags not accumulated immediately")
	}
	if len(s.st.pending) == 0 {
		t.Fatalf("no clarification group queued")
	}

	// The first group is presented with one button per candidate.
	last := m.choices[len(m.choices)-1]
	if last.prompt != "Please choose what movie exactly you are talking about" {
		t.Errorf("clarify prompt = %q", last.prompt)
	}
	if len(last.choices) != 2 {
		t.Fatalf("clarify choices = %d, want 2", len(last.choices))
	}
	tokens := map[string]bool{last.choices[0].Token: true, last.choices[1].Token: true}
	if !tokens["tt0002"] || !tokens["tt0003"] {
		t.Errorf("clarify tokens = %v, want the two Up ids", tokens)
	}

	var sawAnnounce bool
	for _, msg := range m.texts {
		if msg.text == "Multiple movies named 'Up' are in base" {
			sawAnnounce = true
		}
	}
	if !sawAnnounce {
		t.Errorf("missing ambiguity announcement, got %+v", m.texts)
	}
}

func TestClarificationResolution(t *testing.T) {
	t.Parallel()

	m := &mockMessenger{}
	s := testSession(t, m)
	enterMode(t, s, TokenModeFavorites)

	if err := s.HandleText(context.Background(), "Up; Up"); err != nil {
		t.Fatalf("HandleText() error = %v", err)
	}
	if s.Mode() != ModeClarifying {
		t.Fatalf("Mode() = %s, want %s", s.Mode(), ModeClarifying)
	}
	pendingBefore := len(s.st.pending)

	if err := s.HandleChoice(context.Background(), "tt0002"); err != nil {
		t.Fatalf("HandleChoice(first) error = %v", err)
	}
	if len(s.st.pending) != pendingBefore-1 {
		t.Errorf("pending = %d after first resolution, want %d", len(s.st.pending), pendingBefore-1)
	}

	// Resolve the remaining group; the answer flow runs and resets.
	for s.Mode() == ModeClarifying {
		if err := s.HandleChoice(context.Background(), "tt0003"); err != nil {
			t.Fatalf("HandleChoice(next) error = %v", err)
		}
	}
	if s.Mode() != ModeIdle {
		t.Errorf("Mode() = %s, want %s", s.Mode(), ModeIdle)
	}
	if s.st.queryTags.Len() != 0 || len(s.st.exclusionIDs) != 0 {
		t.Errorf("state not cleared after answer: %+v", s.st)
	}

	// Neither Up may come back as a recommendation.
	reply := m.texts[len(m.texts)-1].text
	if strings.Contains(reply, "Up (") {
		t.Errorf("clarified favorite recommended back: %q", reply)
	}
}

func TestClarifyRejectsForeignToken(t *testing.T) {
	t.Parallel()

	m := &mockMessenger{}
	s := testSession(t, m)
	enterMode(t, s, TokenModeFavorites)

	if err := s.HandleText(context.Background(), "Up"); err != nil {
		t.Fatalf("HandleText() error = %v", err)
	}
	pendingBefore := len(s.st.pending)

	err := s.HandleChoice(context.Background(), "tt0004")
	if !errors.Is(err, ErrUnexpectedEvent) {
		t.Fatalf("HandleChoice(foreign) error = %v, want ErrUnexpectedEvent", err)
	}
	if s.Mode() != ModeClarifying || len(s.st.pending) != pendingBefore {
		t.Errorf("state changed on rejected token: mode=%s pending=%d", s.Mode(), len(s.st.pending))
	}
}

func TestFreeTextWhileClarifyingRepresentsGroup(t *testing.T) {
	t.Parallel()

	m := &mockMessenger{}
	s := testSession(t, m)
	enterMode(t, s, TokenModeFavorites)

	if err := s.HandleText(context.Background(), "Up"); err != nil {
		t.Fatalf("HandleText() error = %v", err)
	}
	presentedBefore := len(m.choices)

	if err := s.HandleText(context.Background(), "never mind"); err != nil {
		t.Fatalf("HandleText(while clarifying) error = %v", err)
	}
	if s.Mode() != ModeClarifying {
		t.Errorf("Mode() = %s, want %s", s.Mode(), ModeClarifying)
	}
	if len(m.choices) != presentedBefore+1 {
		t.Errorf("group not re-presented: %d calls, want %d", len(m.choices), presentedBefore+1)
	}
}

func TestUnexpectedEvents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		drive func(t *testing.T, s *Session) error
		mode  Mode
	}{
		{
			name: "free text while idle",
			drive: func(_ *testing.T, s *Session) error {
				return s.HandleText(context.Background(), "hello")
			},
			mode: ModeIdle,
		},
		{
			name: "free text while awaiting mode choice",
			drive: func(t *testing.T, s *Session) error {
				if err := s.HandleText(context.Background(), "/start"); err != nil {
					t.Fatalf("HandleText(/start) error = %v", err)
				}
				return s.HandleText(context.Background(), "hello")
			},
			mode: ModeAwaitingModeChoice,
		},
		{
			name: "choice while awaiting description",
			drive: func(t *testing.T, s *Session) error {
				enterMode(t, s, TokenModeDescription)
				return s.HandleChoice(context.Background(), "tt0001")
			},
			mode: ModeAwaitingDescription,
		},
		{
			name: "mode token while awaiting favorites",
			drive: func(t *testing.T, s *Session) error {
				enterMode(t, s, TokenModeFavorites)
				return s.HandleChoice(context.Background(), TokenModeDescription)
			},
			mode: ModeAwaitingFavorites,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := &mockMessenger{}
			s := testSession(t, m)

			err := tt.drive(t, s)
			if !errors.Is(err, ErrUnexpectedEvent) {
				t.Fatalf("error = %v, want ErrUnexpectedEvent", err)
			}
			if s.Mode() != tt.mode {
				t.Errorf("Mode() = %s, want unchanged %s", s.Mode(), tt.mode)
			}
			// The user is re-prompted to choose a mode.
			if len(m.choices) == 0 || m.choices[len(m.choices)-1].prompt != "Please choose a mode first" {
				t.Errorf("missing mode re-prompt, choices = %+v", m.choices)
			}
		})
	}
}

func TestFailedDeliveryLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	t.Run("answer send fails", func(t *testing.T) {
		t.Parallel()
		m := &mockMessenger{}
		s := testSession(t, m)
		enterMode(t, s, TokenModeDescription)

		m.failAt = m.calls + 1
		err := s.HandleText(context.Background(), "dream heist layers")
		if !errors.Is(err, errDelivery) {
			t.Fatalf("error = %v, want delivery failure", err)
		}
		if s.Mode() != ModeAwaitingDescription {
			t.Errorf("Mode() = %s, want unchanged %s", s.Mode(), ModeAwaitingDescription)
		}
		if s.st.queryTags.Len() != 0 {
			t.Errorf("query tags mutated on failed delivery: %v", s.st.queryTags.Items())
		}
	})

	t.Run("clarification presentation fails", func(t *testing.T) {
		t.Parallel()
		m := &mockMessenger{}
		s := testSession(t, m)
		enterMode(t, s, TokenModeFavorites)

		// Fail on the PresentChoices that follows the announcement.
		m.failAt = m.calls + 2
		err := s.HandleText(context.Background(), "Inception; Up")
		if !errors.Is(err, errDelivery) {
			t.Fatalf("error = %v, want delivery failure", err)
		}
		if s.Mode() != ModeAwaitingFavorites {
			t.Errorf("Mode() = %s, want unchanged %s", s.Mode(), ModeAwaitingFavorites)
		}
		if len(s.st.exclusionIDs) != 0 || s.st.queryTags.Len() != 0 || len(s.st.pending) != 0 {
			t.Errorf("partial mutation on failed delivery: %+v", s.st)
		}
	})
}

func TestRepeatedTurnsReuseSession(t *testing.T) {
	t.Parallel()

	m := &mockMessenger{}
	s := testSession(t, m)

	for i := 0; i < 3; i++ {
		enterMode(t, s, TokenModeDescription)
		if err := s.HandleText(context.Background(), "space horror crew"); err != nil {
			t.Fatalf("turn %d: HandleText() error = %v", i, err)
		}
		if s.Mode() != ModeIdle {
			t.Fatalf("turn %d: Mode() = %s, want %s", i, s.Mode(), ModeIdle)
		}
	}
}
