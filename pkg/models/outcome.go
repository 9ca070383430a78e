package models

import (
	"errors"
	"fmt"
)

// ErrEmailRequired rejects a record whose email is empty after trimming.
// Email is the identity key, so such a record can never be reconciled.
var ErrEmailRequired = errors.New("email is required")

// ErrConflictRace marks an upsert that neither inserted nor found a row.
// With single-statement upserts this indicates a broken uniqueness
// constraint, so the batch must abort.
var ErrConflictRace = errors.New("upsert returned no row")

// ParseError reports a single field that could not be parsed. The record is
// still imported with the field absent.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EntityCounts splits resolved entities into newly created rows and reuses of
// existing rows.
type EntityCounts struct {
	Created int `json:"created"`
	Reused  int `json:"reused"`
}

func (c *EntityCounts) Record(created bool) {
	if created {
		c.Created++
	} else {
		c.Reused++
	}
}

// RecordFailure is one record-level problem surfaced in the batch summary.
type RecordFailure struct {
	Source Source `json:"source"`
	Index  int    `json:"index"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason"`
}

// BatchSummary accumulates what one import run did. All counters reflect the
// state after the batch transaction committed; a rolled back batch reports
// nothing as applied.
type BatchSummary struct {
	Processed     int             `json:"processed"`
	Skipped       int             `json:"skipped"`
	ParseFailures int             `json:"parse_failures"`
	Users         EntityCounts    `json:"users"`
	Addresses     EntityCounts    `json:"addresses"`
	Hobbies       EntityCounts    `json:"hobbies"`
	HobbyLinks    int             `json:"hobby_links"`
	Friendships   int             `json:"friendships"`
	Likes         int             `json:"likes"`
	Messages      int             `json:"messages"`
	Failures      []RecordFailure `json:"failures,omitempty"`
}

// Merge folds another summary into this one.
func (s *BatchSummary) Merge(other BatchSummary) {
	s.Processed += other.Processed
	s.Skipped += other.Skipped
	s.ParseFailures += other.ParseFailures
	s.Users.Created += other.Users.Created
	s.Users.Reused += other.Users.Reused
	s.Addresses.Created += other.Addresses.Created
	s.Addresses.Reused += other.Addresses.Reused
	s.Hobbies.Created += other.Hobbies.Created
	s.Hobbies.Reused += other.Hobbies.Reused
	s.HobbyLinks += other.HobbyLinks
	s.Friendships += other.Friendships
	s.Likes += other.Likes
	s.Messages += other.Messages
	s.Failures = append(s.Failures, other.Failures...)
}
