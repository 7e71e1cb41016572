// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/filmwise/filmwise/internal/recommend"
)

func testRouter(t *testing.T, m Messenger) *Router {
	t.Helper()
	matcher, err := recommend.NewMatcher(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}
	r, err := NewRouter(DefaultConfig(), Deps{
		Catalog:   testCatalog(t),
		Matcher:   matcher,
		Extractor: splitExtractor{},
		Messenger: m,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return r
}

func TestNewRouterRequiresDeps(t *testing.T) {
	t.Parallel()

	_, err := NewRouter(DefaultConfig(), Deps{}, zerolog.Nop())
	if err == nil {
		t.Fatal("NewRouter() with empty deps succeeded, want error")
	}
}

func TestRouterCreatesSessionOnFirstContact(t *testing.T) {
	t.Parallel()

	m := &mockMessenger{}
	r := testRouter(t, m)

	if r.Len() != 0 {
		t.Fatalf("Len() = %d before any event, want 0", r.Len())
	}
	if err := r.OnUserText(context.Background(), "alice", "/start"); err != nil {
		t.Fatalf("OnUserText() error = %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	// A second event from the same user reuses the session.
	if err := r.OnUserChoice(context.Background(), "alice", TokenModeDescription); err != nil {
		t.Fatalf("OnUserChoice() error = %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d after second event, want 1", r.Len())
	}

	if err := r.OnUserText(context.Background(), "bob", "/start"); err != nil {
		t.Fatalf("OnUserText(bob) error = %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d after second user, want 2", r.Len())
	}
}

func TestRouterIsolatesUsers(t *testing.T) {
	t.Parallel()

	m := &mockMessenger{}
	r := testRouter(t, m)
	ctx := context.Background()

	if err := r.OnUserText(ctx, "alice", "/start"); err != nil {
		t.Fatalf("alice /start error = %v", err)
	}
	if err := r.OnUserChoice(ctx, "alice", TokenModeDescription); err != nil {
		t.Fatalf("alice mode choice error = %v", err)
	}

	// Bob never chose a mode, so his free text is unexpected even though
	// Alice is mid-conversation.
	err := r.OnUserText(ctx, "bob", "some movie about space")
	if !errors.Is(err, ErrUnexpectedEvent) {
		t.Errorf("bob free text error = %v, want ErrUnexpectedEvent", err)
	}

	// Alice's conversation is unaffected.
	if err := r.OnUserText(ctx, "alice", "space horror crew"); err != nil {
		t.Errorf("alice description error = %v", err)
	}
}

func TestRouterRejectsEmptyUserID(t *testing.T) {
	t.Parallel()

	r := testRouter(t, &mockMessenger{})

	if err := r.OnUserText(context.Background(), "", "hello"); !errors.Is(err, ErrInvalidUserID) {
		t.Errorf("OnUserText(empty id) error = %v, want ErrInvalidUserID", err)
	}
	if err := r.OnUserChoice(context.Background(), "", "tok"); !errors.Is(err, ErrInvalidUserID) {
		t.Errorf("OnUserChoice(empty id) error = %v, want ErrInvalidUserID", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after rejected events, want 0", r.Len())
	}
}

func TestRouterConcurrentFirstContacts(t *testing.T) {
	t.Parallel()

	r := testRouter(t, &mockMessenger{})

	const users = 32
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", n)
			if err := r.OnUserText(context.Background(), userID, "/start"); err != nil {
				t.Errorf("OnUserText(%s) error = %v", userID, err)
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != users {
		t.Errorf("Len() = %d, want %d", r.Len(), users)
	}
}
