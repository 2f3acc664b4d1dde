// Package router classifies free-text intent, resolves it to an agent
// and skill through the registry, and dispatches single requests or
// sequential pipelines.
package router

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/paideia/pkg/agent"
	"github.com/jllopis/paideia/pkg/core"
	"github.com/jllopis/paideia/pkg/registry"
)

// defaultConfidence is reported when no category pattern matches and
// the message falls through to general retrieval.
const defaultConfidence = 0.5

// Router dispatches requests to agents based on intent analysis.
type Router struct {
	registry *registry.Registry
	tracer   trace.Tracer

	intentCounter    metric.Int64Counter
	dispatchDuration metric.Float64Histogram
}

// RouteOptions tunes a single Route call. ForceAgent bypasses intent
// classification; ForceSkill additionally bypasses the agent's default
// skill choice.
type RouteOptions struct {
	ForceAgent string
	ForceSkill string
	Kwargs     map[string]any
}

// New creates a Router over the given registry.
func New(reg *registry.Registry) *Router {
	r := &Router{
		registry: reg,
		tracer:   otel.Tracer("paideia/router"),
	}

	meter := otel.Meter("paideia/router")
	var err error
	if r.intentCounter, err = meter.Int64Counter(
		"paideia.router.intents",
		metric.WithDescription("Classified intents by category"),
	); err != nil {
		slog.Warn("intent counter unavailable", "error", err)
	}
	if r.dispatchDuration, err = meter.Float64Histogram(
		"paideia.router.dispatch.duration",
		metric.WithDescription("Skill dispatch duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		slog.Warn("dispatch histogram unavailable", "error", err)
	}
	return r
}

// ClassifyIntent scores the message against the fixed intent table and
// returns the winning category with a confidence in (0, 1]. Each
// pattern counts at most once; three or more matches saturate the
// confidence at 1.0. A message matching nothing classifies as general
// retrieval with confidence 0.5. Ties go to the first declared
// category.
func (r *Router) ClassifyIntent(message string) (string, float64) {
	lower := strings.ToLower(message)

	best := ""
	bestScore := 0
	for _, category := range intentTable {
		score := 0
		for _, pattern := range category.patterns {
			if pattern.MatchString(lower) {
				score++
			}
		}
		if score > bestScore {
			best = category.name
			bestScore = score
		}
	}

	if bestScore == 0 {
		return "rag", defaultConfidence
	}

	confidence := float64(bestScore) / 3
	if confidence > 1 {
		confidence = 1
	}
	return best, confidence
}

// ResolveIntent returns the agent instance and skill name for an
// intent. Unmapped intents resolve to the general retrieval target.
func (r *Router) ResolveIntent(intent string) (agent.Agent, string) {
	t, ok := intentTargets[intent]
	if !ok {
		t = defaultTarget
	}
	return r.registry.Get(t.agent), t.skill
}

// Route dispatches a message. With ForceAgent set it goes straight to
// that agent (its first-registered skill unless ForceSkill names one);
// otherwise intent classification picks the target and the decision is
// recorded in the context metadata as routed_intent and
// routing_confidence. Every outcome is a Response; Route never returns
// an error.
func (r *Router) Route(ctx context.Context, ictx *core.Context, message string, opts RouteOptions) *core.Response {
	ctx, runID := core.EnsureRunID(ctx)
	ctx, span := r.tracer.Start(ctx, "Router.Route",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	kwargs := mergeMessage(opts.Kwargs, message)

	if opts.ForceAgent != "" {
		a := r.registry.Get(opts.ForceAgent)
		if a == nil {
			span.SetAttributes(attribute.String("route.error", "agent_not_found"))
			skill := opts.ForceSkill
			if skill == "" {
				skill = "unknown"
			}
			return core.Fail(opts.ForceAgent, skill,
				"agent '"+opts.ForceAgent+"' not found")
		}
		skill := opts.ForceSkill
		if skill == "" {
			skill = firstSkillOf(a)
		}
		span.SetAttributes(
			attribute.String("route.agent", a.Name()),
			attribute.String("route.skill", skill),
			attribute.Bool("route.forced", true),
		)
		return r.execute(ctx, a, skill, ictx, kwargs)
	}

	intent, confidence := r.ClassifyIntent(message)
	slog.InfoContext(ctx, "classified intent", "intent", intent, "confidence", confidence)
	if r.intentCounter != nil {
		r.intentCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("intent", intent)))
	}

	a, skill := r.ResolveIntent(intent)
	if a == nil {
		span.SetAttributes(attribute.String("route.error", "no_agent"))
		return core.Fail("unknown", "unknown", "no agent available for this request")
	}

	ictx.Metadata["routed_intent"] = intent
	ictx.Metadata["routing_confidence"] = confidence

	span.SetAttributes(
		attribute.String("route.intent", intent),
		attribute.Float64("route.confidence", confidence),
		attribute.String("route.agent", a.Name()),
		attribute.String("route.skill", skill),
	)
	return r.execute(ctx, a, skill, ictx, kwargs)
}

// RouteToSkill dispatches directly to a named skill, finding the
// owning agent through the registry's registration-order scan.
func (r *Router) RouteToSkill(ctx context.Context, skillName string, ictx *core.Context, kwargs map[string]any) *core.Response {
	ctx, runID := core.EnsureRunID(ctx)
	ctx, span := r.tracer.Start(ctx, "Router.RouteToSkill",
		trace.WithAttributes(
			attribute.String("route.skill", skillName),
			attribute.String("run.id", runID),
		))
	defer span.End()

	a := r.registry.GetBySkill(skillName)
	if a == nil {
		return core.Fail("unknown", skillName, "no agent found with skill '"+skillName+"'")
	}
	return r.execute(ctx, a, skillName, ictx, kwargs)
}

func (r *Router) execute(ctx context.Context, a agent.Agent, skill string, ictx *core.Context, kwargs map[string]any) *core.Response {
	start := time.Now()
	resp := a.ExecuteSkill(ctx, skill, ictx, kwargs)
	if r.dispatchDuration != nil {
		r.dispatchDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("agent", resp.Agent),
			attribute.String("skill", resp.Skill),
			attribute.Bool("success", resp.Success),
		))
	}
	return resp
}

func firstSkillOf(a agent.Agent) string {
	skills := a.Skills()
	if len(skills) == 0 {
		return ""
	}
	return skills[0].Name
}

func mergeMessage(kwargs map[string]any, message string) map[string]any {
	merged := make(map[string]any, len(kwargs)+1)
	for k, v := range kwargs {
		merged[k] = v
	}
	merged["message"] = message
	return merged
}
