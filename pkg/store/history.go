// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jllopis/paideia/pkg/errors"
)

// summaryLimit caps stored input/output summaries.
const summaryLimit = 500

// Event is one recorded interaction in a learner's history.
type Event struct {
	ID            string         `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	Type          string         `json:"type"`
	UserID        string         `json:"user_id,omitempty"`
	SessionID     string         `json:"session_id,omitempty"`
	Agent         string         `json:"agent,omitempty"`
	Skill         string         `json:"skill,omitempty"`
	InputSummary  string         `json:"input_summary,omitempty"`
	OutputSummary string         `json:"output_summary,omitempty"`
	Success       bool           `json:"success"`
	DurationMS    int64          `json:"duration_ms"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// EventFilter narrows a history query. Zero fields match everything.
type EventFilter struct {
	UserID    string
	SessionID string
	Type      string
	Agent     string
	Since     time.Time
	Limit     int
}

// Analytics aggregates recorded activity.
type Analytics struct {
	TotalEvents    int            `json:"total_events"`
	SuccessRate    float64        `json:"success_rate"`
	AvgDurationMS  float64        `json:"avg_duration_ms"`
	UniqueUsers    int            `json:"unique_users"`
	UniqueSessions int            `json:"unique_sessions"`
	ByType         map[string]int `json:"by_type"`
	ByAgent        map[string]int `json:"by_agent"`
	BySkill        map[string]int `json:"by_skill"`
}

// RecordEvent persists an event, filling in ID and timestamp when absent
// and truncating long summaries.
func (s *Store) RecordEvent(ctx context.Context, ev Event) (Event, error) {
	if ev.Type == "" {
		return Event{}, errors.New(errors.CodeInvalidInput, "event type is required", nil)
	}
	if ev.ID == "" {
		ev.ID = "phr-" + uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	ev.InputSummary = truncate(ev.InputSummary, summaryLimit)
	ev.OutputSummary = truncate(ev.OutputSummary, summaryLimit)

	var metadata []byte
	if len(ev.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(ev.Metadata)
		if err != nil {
			return Event{}, errors.New(errors.CodeInvalidInput, "marshal event metadata", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, timestamp, type, user_id, session_id, agent, skill, input_summary, output_summary, success, duration_ms, metadata_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, eventTable),
		ev.ID, ev.Timestamp.UnixMilli(), ev.Type, ev.UserID, ev.SessionID,
		ev.Agent, ev.Skill, ev.InputSummary, ev.OutputSummary,
		boolToInt(ev.Success), ev.DurationMS, metadata)
	if err != nil {
		return Event{}, errors.New(errors.CodeStoreError, "insert event", err)
	}
	return ev, nil
}

// QueryEvents returns events matching the filter, newest first.
func (s *Store) QueryEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	where, args := buildEventFilter(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, timestamp, type, user_id, session_id, agent, skill, input_summary, output_summary, success, duration_ms, metadata_json
		FROM %s%s ORDER BY timestamp DESC, id ASC LIMIT ?`, eventTable, where)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.New(errors.CodeStoreError, "query events", err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var (
			ev       Event
			ts       int64
			success  int
			metadata []byte
		)
		if err := rows.Scan(&ev.ID, &ts, &ev.Type, &ev.UserID, &ev.SessionID,
			&ev.Agent, &ev.Skill, &ev.InputSummary, &ev.OutputSummary,
			&success, &ev.DurationMS, &metadata); err != nil {
			return nil, errors.New(errors.CodeStoreError, "scan event", err)
		}
		ev.Timestamp = time.UnixMilli(ts).UTC()
		ev.Success = success != 0
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &ev.Metadata); err != nil {
				return nil, errors.New(errors.CodeStoreError, "unmarshal event metadata", err)
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.CodeStoreError, "query events", err)
	}
	return out, nil
}

// Aggregate summarizes events matching the filter. The filter's Limit is
// ignored; aggregation always covers every matching event.
func (s *Store) Aggregate(ctx context.Context, filter EventFilter) (*Analytics, error) {
	where, args := buildEventFilter(filter)

	analytics := &Analytics{
		ByType:  map[string]int{},
		ByAgent: map[string]int{},
		BySkill: map[string]int{},
	}
	var successes int
	var totalDuration int64
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*), COALESCE(SUM(success), 0), COALESCE(SUM(duration_ms), 0),
			COUNT(DISTINCT CASE WHEN user_id <> '' THEN user_id END),
			COUNT(DISTINCT CASE WHEN session_id <> '' THEN session_id END)
			FROM %s%s`, eventTable, where),
		args...).Scan(&analytics.TotalEvents, &successes, &totalDuration,
		&analytics.UniqueUsers, &analytics.UniqueSessions)
	if err != nil {
		return nil, errors.New(errors.CodeStoreError, "aggregate events", err)
	}
	if analytics.TotalEvents > 0 {
		analytics.SuccessRate = float64(successes) / float64(analytics.TotalEvents)
		analytics.AvgDurationMS = float64(totalDuration) / float64(analytics.TotalEvents)
	}

	for col, dst := range map[string]map[string]int{
		"type":  analytics.ByType,
		"agent": analytics.ByAgent,
		"skill": analytics.BySkill,
	} {
		rows, err := s.db.QueryContext(ctx,
			fmt.Sprintf("SELECT %s, COUNT(*) FROM %s%s GROUP BY %s", col, eventTable, where, col),
			args...)
		if err != nil {
			return nil, errors.New(errors.CodeStoreError, "aggregate events", err)
		}
		for rows.Next() {
			var key string
			var count int
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				return nil, errors.New(errors.CodeStoreError, "aggregate events", err)
			}
			if key != "" {
				dst[key] = count
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, errors.New(errors.CodeStoreError, "aggregate events", err)
		}
		rows.Close()
	}
	return analytics, nil
}

func buildEventFilter(filter EventFilter) (string, []any) {
	var clauses []string
	var args []any
	if filter.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.Agent != "" {
		clauses = append(clauses, "agent = ?")
		args = append(args, filter.Agent)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().UnixMilli())
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
