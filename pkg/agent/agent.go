// Package agent provides the capability-provider contract and the
// embeddable base implementation every Paideia agent is built on.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jllopis/paideia/pkg/core"
)

// Agent is a named bundle of skills with a shared execution status.
// Implementations register their skill set exactly once at
// construction and never mutate it afterwards.
type Agent interface {
	Name() string
	Description() string
	Skills() []core.SkillInfo
	HasSkill(name string) bool
	// ExecuteSkill runs the named skill. It always returns a Response:
	// unknown skills, failed preconditions, and handler errors are all
	// reported as failed Responses, never as Go errors or panics.
	ExecuteSkill(ctx context.Context, skillName string, ictx *core.Context, kwargs map[string]any) *core.Response
	// Process runs the first-registered skill. It exists for simple
	// single-skill agents; the router does not use it.
	Process(ctx context.Context, ictx *core.Context, kwargs map[string]any) *core.Response
	Status() core.Status
}

// Base is the embeddable agent implementation. It owns the skill map,
// preserves registration order, and tracks execution status. Status is
// overwritten per invocation and assumes a single writer; callers
// running concurrent requests must use separate agent instances or
// treat status as advisory.
type Base struct {
	name        string
	description string
	skills      map[string]core.Skill
	order       []string
	status      core.Status
}

// NewBase creates the embeddable base for a named agent.
func NewBase(name, description string) Base {
	return Base{
		name:        name,
		description: description,
		skills:      make(map[string]core.Skill),
		status:      core.StatusIdle,
	}
}

// Name returns the agent name.
func (b *Base) Name() string { return b.name }

// Description returns the agent description.
func (b *Base) Description() string { return b.description }

// Status returns the status of the most recent execution.
func (b *Base) Status() core.Status { return b.status }

// Register adds a skill to the agent. Later registrations under the
// same name replace earlier ones but keep the original position.
func (b *Base) Register(skill core.Skill) {
	if _, exists := b.skills[skill.Name]; !exists {
		b.order = append(b.order, skill.Name)
	}
	b.skills[skill.Name] = skill
	slog.Debug("registered skill", "agent", b.name, "skill", skill.Name)
}

// HasSkill reports whether the agent owns the named skill.
func (b *Base) HasSkill(name string) bool {
	_, ok := b.skills[name]
	return ok
}

// Skills lists the agent's skills in registration order.
func (b *Base) Skills() []core.SkillInfo {
	out := make([]core.SkillInfo, 0, len(b.order))
	for _, name := range b.order {
		s := b.skills[name]
		out = append(out, core.SkillInfo{
			Name:        s.Name,
			Description: s.Description,
			OutputType:  s.OutputType,
		})
	}
	return out
}

// FirstSkill returns the name of the first-registered skill, or "".
func (b *Base) FirstSkill() string {
	if len(b.order) == 0 {
		return ""
	}
	return b.order[0]
}

// ExecuteSkill runs the named skill against the shared context. On
// success the execution is appended to the context trace. Every
// failure path is converted into a failed Response at this boundary.
func (b *Base) ExecuteSkill(ctx context.Context, skillName string, ictx *core.Context, kwargs map[string]any) (resp *core.Response) {
	skill, ok := b.skills[skillName]
	if !ok {
		return core.Fail(b.name, skillName,
			"skill '"+skillName+"' not found in agent '"+b.name+"'")
	}

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "skill panicked", "agent", b.name, "skill", skillName, "panic", r)
			b.status = core.StatusError
			resp = core.Fail(b.name, skillName, fmt.Sprintf("skill '%s' panicked: %v", skillName, r))
		}
	}()

	b.status = core.StatusRunning
	slog.InfoContext(ctx, "executing skill", "agent", b.name, "skill", skillName)

	result, err := skill.Execute(ctx, ictx, kwargs)
	if err != nil {
		slog.ErrorContext(ctx, "skill failed", "agent", b.name, "skill", skillName, "error", err)
		b.status = core.StatusError
		return core.Fail(b.name, skillName, err.Error())
	}

	ictx.AddTrace(b.name, skillName, kwargs, result)
	b.status = core.StatusSuccess
	return core.Succeed(b.name, skillName, result)
}

// Process executes the first-registered skill.
func (b *Base) Process(ctx context.Context, ictx *core.Context, kwargs map[string]any) *core.Response {
	first := b.FirstSkill()
	if first == "" {
		return core.Fail(b.name, "process", "no skills registered")
	}
	return b.ExecuteSkill(ctx, first, ictx, kwargs)
}
