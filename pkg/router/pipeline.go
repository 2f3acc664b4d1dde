package router

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/paideia/pkg/core"
)

// PipelineStep describes one step of a sequential skill pipeline.
type PipelineStep struct {
	Agent  string         `json:"agent"`
	Skill  string         `json:"skill"`
	Kwargs map[string]any `json:"kwargs"`
	// UsePreviousOutput injects the previous step's response data into
	// this step's kwargs as previousOutput.
	UsePreviousOutput bool `json:"use_previous_output"`
	// StopOnError controls whether a failed step halts the pipeline.
	// Unset means true.
	StopOnError *bool `json:"stop_on_error,omitempty"`
}

func (s PipelineStep) stopOnError() bool {
	return s.StopOnError == nil || *s.StopOnError
}

// RunPipeline executes steps strictly in order against one shared
// context, at most one skill in flight at a time. A failing step is
// recorded like any other and halts the pipeline only when its
// StopOnError is set (the default). The returned slice always holds
// every response produced up to the stopping point.
func (r *Router) RunPipeline(ctx context.Context, ictx *core.Context, steps []PipelineStep) []*core.Response {
	ctx, runID := core.EnsureRunID(ctx)
	ctx, span := r.tracer.Start(ctx, "Router.Pipeline",
		trace.WithAttributes(
			attribute.Int("pipeline.steps", len(steps)),
			attribute.String("run.id", runID),
		))
	defer span.End()

	responses := make([]*core.Response, 0, len(steps))

	for i, step := range steps {
		kwargs := step.Kwargs
		if step.UsePreviousOutput && len(responses) > 0 {
			kwargs = cloneKwargs(kwargs)
			kwargs["previousOutput"] = responses[len(responses)-1].Data
		}

		a := r.registry.Get(step.Agent)
		if a == nil {
			responses = append(responses, core.Fail(step.Agent, step.Skill,
				fmt.Sprintf("agent '%s' not found at step %d", step.Agent, i)))
			if step.stopOnError() {
				break
			}
			continue
		}

		resp := r.execute(ctx, a, step.Skill, ictx, kwargs)
		responses = append(responses, resp)

		if !resp.Success && step.stopOnError() {
			break
		}
	}

	span.SetAttributes(attribute.Int("pipeline.executed", len(responses)))
	return responses
}

func cloneKwargs(kwargs map[string]any) map[string]any {
	out := make(map[string]any, len(kwargs)+1)
	for k, v := range kwargs {
		out[k] = v
	}
	return out
}
