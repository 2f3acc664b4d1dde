// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"time"

	"github.com/jllopis/paideia/pkg/agent"
	"github.com/jllopis/paideia/pkg/core"
	"github.com/jllopis/paideia/pkg/errors"
	"github.com/jllopis/paideia/pkg/store"
)

// History records and queries persistent history records (PHR) for
// auditing and analytics.
type History struct {
	agent.Base
	svc Services
}

// NewHistory creates the history agent.
func NewHistory(svc Services) *History {
	a := &History{
		Base: agent.NewBase("HistoryAgent",
			"Manages Persistent History Records (PHR) for system auditing, analytics, and learning"),
		svc: svc,
	}
	a.Register(core.NewSkill("recordEvent",
		"Record an event to the Persistent History Record",
		a.recordEvent, core.WithOutputType("phr_record")))
	a.Register(core.NewSkill("queryHistory",
		"Query historical events with filters",
		a.queryHistory, core.WithOutputType("phr_query_result")))
	a.Register(core.NewSkill("getAnalytics",
		"Get usage analytics from history",
		a.getAnalytics, core.WithOutputType("analytics")))
	a.Register(core.NewSkill("exportHistory",
		"Export history records for external analysis",
		a.exportHistory, core.WithOutputType("export")))
	a.Register(core.NewSkill("getUserHistory",
		"Get history for the current user",
		a.getUserHistory,
		core.WithRequiredContext("user_id"),
		core.WithOutputType("user_history")))
	return a
}

func (a *History) store() (*store.Store, error) {
	if a.svc.Store == nil {
		return nil, errors.New(errors.CodeStoreError, "history store not configured", nil)
	}
	return a.svc.Store, nil
}

func (a *History) recordEvent(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	ev, err := st.RecordEvent(ctx, store.Event{
		Type:          stringArg(kwargs, "event_type", "system"),
		UserID:        ictx.UserID,
		SessionID:     ictx.SessionID,
		Agent:         stringArg(kwargs, "agent", "unknown"),
		Skill:         stringArg(kwargs, "skill", "unknown"),
		InputSummary:  stringArg(kwargs, "input_summary", ""),
		OutputSummary: stringArg(kwargs, "output_summary", ""),
		Success:       boolArg(kwargs, "success", true),
		DurationMS:    int64(intArg(kwargs, "duration_ms", 0)),
		Metadata:      mapArg(kwargs, "metadata"),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"recorded": true,
		"phr_id":   ev.ID,
	}, nil
}

func (a *History) queryHistory(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	limit := intArg(kwargs, "limit", 50)
	filter := store.EventFilter{
		Type:   stringArg(kwargs, "event_type", ""),
		Agent:  stringArg(kwargs, "agent", ""),
		UserID: stringArg(kwargs, "user_id", ""),
		Limit:  limit,
	}
	if since := stringArg(kwargs, "start_date", ""); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return nil, errors.New(errors.CodeInvalidInput, "start_date must be RFC 3339", err)
		}
		filter.Since = t
	}

	records, err := st.QueryEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"records": records,
		"total":   len(records),
		"limit":   limit,
	}, nil
}

// analyticsPeriods maps the requested period to its lookback window.
// Anything unrecognized gets the 30-day window.
var analyticsPeriods = map[string]time.Duration{
	"day":  24 * time.Hour,
	"week": 7 * 24 * time.Hour,
}

func (a *History) getAnalytics(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	period := stringArg(kwargs, "period", "day")
	window, ok := analyticsPeriods[period]
	if !ok {
		window = 30 * 24 * time.Hour
	}

	analytics, err := st.Aggregate(ctx, store.EventFilter{
		Since: time.Now().UTC().Add(-window),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"period":          period,
		"total_events":    analytics.TotalEvents,
		"success_rate":    analytics.SuccessRate,
		"avg_duration_ms": analytics.AvgDurationMS,
		"unique_users":    analytics.UniqueUsers,
		"unique_sessions": analytics.UniqueSessions,
		"by_agent":        analytics.ByAgent,
		"by_skill":        analytics.BySkill,
		"by_type":         analytics.ByType,
	}, nil
}

func (a *History) exportHistory(ctx context.Context, _ *core.Context, kwargs map[string]any) (any, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	format := stringArg(kwargs, "format", "json")
	limit := intArg(kwargs, "limit", 1000)

	records, err := st.QueryEvents(ctx, store.EventFilter{Limit: limit})
	if err != nil {
		return nil, err
	}

	switch format {
	case "json":
		return map[string]any{
			"format": "json",
			"count":  len(records),
			"data":   records,
		}, nil
	case "csv":
		headers := []string{"id", "timestamp", "type", "agent", "skill", "success", "duration_ms"}
		rows := make([][]any, 0, len(records))
		for _, r := range records {
			rows = append(rows, []any{
				r.ID, r.Timestamp.Format(time.RFC3339), r.Type,
				r.Agent, r.Skill, r.Success, r.DurationMS,
			})
		}
		return map[string]any{
			"format":  "csv",
			"count":   len(records),
			"headers": headers,
			"rows":    rows,
		}, nil
	default:
		return nil, errors.New(errors.CodeInvalidInput, "unsupported format: "+format, nil)
	}
}

func (a *History) getUserHistory(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	limit := intArg(kwargs, "limit", 20)

	records, err := st.QueryEvents(ctx, store.EventFilter{
		UserID: ictx.UserID,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"user_id":       ictx.UserID,
		"total_events":  len(records),
		"recent_events": records,
	}, nil
}
