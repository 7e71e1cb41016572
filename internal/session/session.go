// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/filmwise/filmwise/internal/catalog"
	"github.com/filmwise/filmwise/internal/metrics"
	"github.com/filmwise/filmwise/internal/recommend"
	"github.com/filmwise/filmwise/internal/tags"
)

// ErrUnexpectedEvent signals an event arriving in a mode that does not
// accept it. The session re-prompts and keeps its state unchanged.
var ErrUnexpectedEvent = errors.New("unexpected event for current session mode")

// Mode is the conversational state of a session.
type Mode int

const (
	ModeIdle Mode = iota
	ModeAwaitingModeChoice
	ModeAwaitingDescription
	ModeAwaitingFavorites
	ModeClarifying
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeAwaitingModeChoice:
		return "awaiting_mode_choice"
	case ModeAwaitingDescription:
		return "awaiting_description"
	case ModeAwaitingFavorites:
		return "awaiting_favorites"
	case ModeClarifying:
		return "clarifying"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Choice tokens for the two recommendation modes and the command that
// (re)opens the mode menu from any state.
const (
	StartCommand         = "/start"
	TokenModeDescription = "mode:description"
	TokenModeFavorites   = "mode:favorites"
)

// User-facing texts, kept byte for byte as users know them.
const (
	promptModeChoice  = "Please choose a mode first"
	promptDescription = "Write film themes you are interested in"
	promptFavorites   = "Write a few of your favourite films, separated by semicolumn"
	promptClarify     = "Please choose what movie exactly you are talking about"
	msgNoSuchMovies   = "No such movies in base"

	labelModeDescription = "Recommend movies from description"
	labelModeFavorites   = "Recommend movies like your favorite movies"
)

// Choice is one button offered to the user: a human label and the opaque
// token delivered back when the button is tapped.
type Choice struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Messenger delivers outbound actions to one user. Implementations may
// fail; the session treats a failed delivery as if the triggering event
// never arrived.
type Messenger interface {
	SendText(ctx context.Context, userID, text string) error
	PresentChoices(ctx context.Context, userID, prompt string, choices []Choice) error
}

// clarificationGroup is a set of catalog records sharing one normalized
// title, still awaiting the user's disambiguation.
type clarificationGroup struct {
	title  string
	movies []catalog.MovieRecord
}

// state holds everything an event handler may mutate. Handlers work on a
// clone and commit only after every outbound action was delivered, so a
// failed messenger call leaves the session untouched.
type state struct {
	mode         Mode
	queryTags    tags.Set
	exclusionIDs map[string]struct{}
	pending      []clarificationGroup
}

func newState() state {
	return state{
		mode:         ModeIdle,
		queryTags:    tags.NewSet(),
		exclusionIDs: make(map[string]struct{}),
	}
}

func (st state) clone() state {
	out := state{
		mode:         st.mode,
		queryTags:    st.queryTags.Clone(),
		exclusionIDs: make(map[string]struct{}, len(st.exclusionIDs)),
	}
	for id := range st.exclusionIDs {
		out.exclusionIDs[id] = struct{}{}
	}
	if len(st.pending) > 0 {
		out.pending = make([]clarificationGroup, len(st.pending))
		copy(out.pending, st.pending)
	}
	return out
}

// Session is one user's conversation. It is mutated only by that user's
// sequential event stream; the inbound pipeline guarantees ordering, so
// no internal locking is needed.
type Session struct {
	userID    string
	catalog   *catalog.Catalog
	matcher   *recommend.Matcher
	extractor catalog.TagExtractor
	messenger Messenger
	logger    zerolog.Logger

	st         state
	lastActive time.Time
}

// New creates a session in Idle for the given user.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(userID string, cat *catalog.Catalog, matcher *recommend.Matcher, extractor catalog.TagExtractor, messenger Messenger, logger zerolog.Logger) *Session {
	return &Session{
		userID:    userID,
		catalog:   cat,
		matcher:   matcher,
		extractor: extractor,
		messenger: messenger,
		logger:    logger.With().Str("component", "session").Str("user_id", userID).Logger(),
		st:        newState(),
	}
}

// Mode returns the current conversational mode.
func (s *Session) Mode() Mode {
	return s.st.mode
}

// LastActive returns the time of the last handled event.
func (s *Session) LastActive() time.Time {
	return s.lastActive
}

// HandleText processes one free-text message from the user.
func (s *Session) HandleText(ctx context.Context, text string) error {
	scratch := s.st.clone()
	if err := s.handleText(ctx, &scratch, text); err != nil {
		return err
	}
	s.commit(scratch)
	return nil
}

// HandleChoice processes one button tap from the user.
func (s *Session) HandleChoice(ctx context.Context, token string) error {
	scratch := s.st.clone()
	if err := s.handleChoice(ctx, &scratch, token); err != nil {
		return err
	}
	s.commit(scratch)
	return nil
}

func (s *Session) commit(scratch state) {
	s.st = scratch
	s.lastActive = time.Now()
}

func (s *Session) handleText(ctx context.Context, st *state, text string) error {
	if strings.TrimSpace(text) == StartCommand {
		return s.presentModeMenu(ctx, st)
	}

	switch st.mode {
	case ModeAwaitingDescription:
		start := time.Now()
		st.queryTags = s.extractor.Extract(text)
		metrics.RecordTagExtraction(time.Since(start))
		return s.answer(ctx, st, "description")

	case ModeAwaitingFavorites:
		return s.intakeFavorites(ctx, st, text)

	case ModeClarifying:
		// Free text does not resolve a clarification; re-present the
		// pending group and wait for a tap.
		return s.presentClarification(ctx, st.pending[0])

	default: // ModeIdle, ModeAwaitingModeChoice
		if err := s.messenger.PresentChoices(ctx, s.userID, promptModeChoice, modeChoices()); err != nil {
			return fmt.Errorf("re-prompt mode choice: %w", err)
		}
		return fmt.Errorf("free text in mode %s: %w", st.mode, ErrUnexpectedEvent)
	}
}

func (s *Session) handleChoice(ctx context.Context, st *state, token string) error {
	switch {
	case st.mode == ModeClarifying:
		return s.resolveClarification(ctx, st, token)

	case token == TokenModeDescription && acceptsModeChoice(st.mode):
		if err := s.messenger.SendText(ctx, s.userID, promptDescription); err != nil {
			return fmt.Errorf("prompt description: %w", err)
		}
		st.mode = ModeAwaitingDescription
		return nil

	case token == TokenModeFavorites && acceptsModeChoice(st.mode):
		if err := s.messenger.SendText(ctx, s.userID, promptFavorites); err != nil {
			return fmt.Errorf("prompt favorites: %w", err)
		}
		st.mode = ModeAwaitingFavorites
		st.exclusionIDs = make(map[string]struct{})
		return nil

	default:
		if err := s.messenger.PresentChoices(ctx, s.userID, promptModeChoice, modeChoices()); err != nil {
			return fmt.Errorf("re-prompt mode choice: %w", err)
		}
		return fmt.Errorf("choice %q in mode %s: %w", token, st.mode, ErrUnexpectedEvent)
	}
}

func acceptsModeChoice(m Mode) bool {
	return m == ModeIdle || m == ModeAwaitingModeChoice
}

func modeChoices() []Choice {
	return []Choice{
		{Label: labelModeDescription, Token: TokenModeDescription},
		{Label: labelModeFavorites, Token: TokenModeFavorites},
	}
}

func (s *Session) presentModeMenu(ctx context.Context, st *state) error {
	if err := s.messenger.PresentChoices(ctx, s.userID, promptModeChoice, modeChoices()); err != nil {
		return fmt.Errorf("present mode menu: %w", err)
	}
	st.mode = ModeAwaitingModeChoice
	st.queryTags = tags.NewSet()
	st.exclusionIDs = make(map[string]struct{})
	st.pending = nil
	return nil
}

// intakeFavorites processes a semicolon-separated list of favorite movie
// titles. Unambiguous titles contribute tags and exclusion ids at once;
// ambiguous ones queue a clarification group each.
func (s *Session) intakeFavorites(ctx context.Context, st *state, text string) error {
	for _, segment := range strings.Split(text, ";") {
		title := strings.TrimSpace(segment)
		if title == "" {
			continue
		}

		matches := s.catalog.ByTitle(catalog.NormalizeTitle(title))
		switch matches.Size() {
		case 0:
			msg := fmt.Sprintf("No movies named '%s' in base", title)
			if err := s.messenger.SendText(ctx, s.userID, msg); err != nil {
				return fmt.Errorf("report unknown title: %w", err)
			}
		case 1:
			rec := matches.Records()[0]
			st.queryTags.Union(rec.Tags)
			st.exclusionIDs[rec.ID] = struct{}{}
		default:
			st.pending = append(st.pending, clarificationGroup{
				title:  title,
				movies: matches.Records(),
			})
		}
	}

	if len(st.pending) > 0 {
		if err := s.presentClarification(ctx, st.pending[0]); err != nil {
			return err
		}
		st.mode = ModeClarifying
		return nil
	}
	return s.answer(ctx, st, "favorites")
}

func (s *Session) presentClarification(ctx context.Context, group clarificationGroup) error {
	msg := fmt.Sprintf("Multiple movies named '%s' are in base", group.title)
	if err := s.messenger.SendText(ctx, s.userID, msg); err != nil {
		return fmt.Errorf("announce clarification: %w", err)
	}

	choices := make([]Choice, len(group.movies))
	for i, rec := range group.movies {
		choices[i] = Choice{Label: rec.Render(), Token: rec.ID}
	}
	if err := s.messenger.PresentChoices(ctx, s.userID, promptClarify, choices); err != nil {
		return fmt.Errorf("present clarification: %w", err)
	}
	return nil
}

func (s *Session) resolveClarification(ctx context.Context, st *state, token string) error {
	group := st.pending[0]

	var chosen *catalog.MovieRecord
	for i := range group.movies {
		if group.movies[i].ID == token {
			chosen = &group.movies[i]
			break
		}
	}
	if chosen == nil {
		// The tap does not belong to the pending group; ask again.
		if err := s.presentClarification(ctx, group); err != nil {
			return err
		}
		return fmt.Errorf("choice %q not in clarification group %q: %w", token, group.title, ErrUnexpectedEvent)
	}

	st.queryTags.Union(chosen.Tags)
	st.exclusionIDs[chosen.ID] = struct{}{}
	st.pending = st.pending[1:]

	if len(st.pending) > 0 {
		return s.presentClarification(ctx, st.pending[0])
	}
	return s.answer(ctx, st, "favorites")
}

// answer runs the shared answer flow: score the catalog against the
// accumulated query tags, exclude the user's own favorites, send the top
// ranking (or the no-match message), and reset to Idle.
func (s *Session) answer(ctx context.Context, st *state, source string) error {
	pool := s.catalog.Excluding(st.exclusionIDs)
	ranked := s.matcher.Rank(pool, st.queryTags, s.matcher.TopK())

	var reply string
	if len(ranked) == 0 {
		reply = msgNoSuchMovies
	} else {
		lines := make([]string, len(ranked))
		for i, rec := range ranked {
			lines[i] = rec.Render()
		}
		reply = strings.Join(lines, "\n\n")
	}
	if err := s.messenger.SendText(ctx, s.userID, reply); err != nil {
		return fmt.Errorf("send answer: %w", err)
	}

	metrics.RecordRecommendation(source, len(ranked))
	s.logger.Info().
		Str("source", source).
		Int("query_tags", st.queryTags.Len()).
		Int("matched", len(ranked)).
		Msg("answer served")

	st.queryTags = tags.NewSet()
	st.exclusionIDs = make(map[string]struct{})
	st.pending = nil
	st.mode = ModeIdle
	return nil
}
