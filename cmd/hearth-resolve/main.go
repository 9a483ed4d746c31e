// Copyright 2026 The Hearth Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/hearth-im/hearth/eventauth"
	"github.com/hearth-im/hearth/lib/event"
	"github.com/hearth-im/hearth/lib/eventstore"
	"github.com/hearth-im/hearth/lib/ref"
	"github.com/hearth-im/hearth/lib/roomversion"
	"github.com/hearth-im/hearth/stateres"
)

func main() {
	os.Exit(run())
}

func run() int {
	var scenarioPath string
	var dbPath string
	var logLevel string
	var checkEvent string

	flagSet := pflag.NewFlagSet("hearth-resolve", pflag.ContinueOnError)
	flagSet.StringVar(&scenarioPath, "scenario", "", "path to the scenario YAML file (required)")
	flagSet.StringVar(&dbPath, "db", "", "SQLite database path (default: in-memory store)")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flagSet.StringVar(&checkEvent, "check-event", "", "run the authorization checks for this event ID against the resolved state")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "error: --scenario is required")
		flagSet.PrintDefaults()
		return 2
	}

	logger, err := newLogger(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	ctx := context.Background()

	s, err := loadScenario(scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	rules, err := s.rules()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	store, closeStore, err := populateStore(ctx, s, dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	defer closeStore()

	forks, authSets, err := buildForks(ctx, s, store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	resolved, err := stateres.New(store, logger).Resolve(ctx, rules, forks, authSets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: resolution failed: %v\n", err)
		return 2
	}

	if err := renderState(os.Stdout, resolved); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if checkEvent != "" {
		return runAuthCheck(ctx, rules, checkEvent, resolved, store)
	}
	return 0
}

func newLogger(level string) (*slog.Logger, error) {
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel,
	})), nil
}

// populateStore loads the scenario events into either an in-memory
// store or, when dbPath is set, a SQLite store.
func populateStore(ctx context.Context, s *scenario, dbPath string, logger *slog.Logger) (stateres.Store, func() error, error) {
	pdus, err := s.pdus()
	if err != nil {
		return nil, nil, err
	}

	if dbPath == "" {
		store := eventstore.NewMemoryStore()
		for _, pdu := range pdus {
			store.Add(pdu)
		}
		return store, func() error { return nil }, nil
	}

	store, err := eventstore.OpenSQLite(eventstore.SQLiteConfig{
		Path:   dbPath,
		Logger: logger,
	})
	if err != nil {
		return nil, nil, err
	}
	events := make([]event.Event, 0, len(pdus))
	for _, pdu := range pdus {
		events = append(events, pdu)
	}
	if err := store.Insert(ctx, events...); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, store.Close, nil
}

// runAuthCheck replays the full authorization checks for one event
// against the resolved state.
func runAuthCheck(ctx context.Context, rules roomversion.Rules, rawID string, resolved stateres.StateMap, store stateres.Store) int {
	id, err := ref.ParseEventID(rawID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: --check-event: %v\n", err)
		return 2
	}
	ev, err := store.Event(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: --check-event: %v\n", err)
		return 2
	}

	fetchState := eventauth.StateFetcherFunc(func(ctx context.Context, tuple event.StateTuple) (event.Event, error) {
		stateID, ok := resolved[tuple]
		if !ok {
			return nil, &eventstore.NotFoundError{Ref: tuple.String()}
		}
		return store.Event(ctx, stateID)
	})

	err = eventauth.Check(ctx, rules, ev, eventauth.EventFetcherFunc(store.Event), fetchState)
	switch {
	case err == nil:
		fmt.Printf("event %s allowed\n", id)
		return 0
	case eventauth.IsReject(err):
		fmt.Printf("event %s rejected: %v\n", id, err)
		return 1
	default:
		fmt.Fprintf(os.Stderr, "error: checking %s: %v\n", id, err)
		return 2
	}
}
