package core

import (
	"context"

	"github.com/jllopis/paideia/pkg/errors"
)

// Handler executes a skill against the shared request context with
// named arguments. Handlers may call external collaborators and may
// fail; failures propagate to Execute's caller.
type Handler func(ctx context.Context, ictx *Context, kwargs map[string]any) (any, error)

// Skill is a single named operation owned by exactly one agent. Name
// is unique within the owning agent; OutputType is documentation only.
type Skill struct {
	Name            string
	Description     string
	Handler         Handler
	RequiredContext []string
	OutputType      string
}

// SkillInfo is the introspection triple exposed by agents and the
// registry.
type SkillInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OutputType  string `json:"output_type"`
	Agent       string `json:"agent,omitempty"`
}

// NewSkill builds a Skill. OutputType defaults to "any".
func NewSkill(name, description string, handler Handler, opts ...SkillOption) Skill {
	s := Skill{
		Name:        name,
		Description: description,
		Handler:     handler,
		OutputType:  "any",
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// SkillOption configures a Skill at construction.
type SkillOption func(*Skill)

// WithRequiredContext declares the context fields that must be set
// before the handler runs.
func WithRequiredContext(fields ...string) SkillOption {
	return func(s *Skill) {
		s.RequiredContext = fields
	}
}

// WithOutputType documents the expected output shape.
func WithOutputType(outputType string) SkillOption {
	return func(s *Skill) {
		s.OutputType = outputType
	}
}

// Execute validates the required context fields and invokes the
// handler. The handler is only invoked after validation succeeds; a
// missing or empty field yields a CodeMissingContext error.
func (s Skill) Execute(ctx context.Context, ictx *Context, kwargs map[string]any) (any, error) {
	for _, field := range s.RequiredContext {
		if _, ok := ictx.Field(field); !ok {
			return nil, errors.New(errors.CodeMissingContext,
				"missing required context field: "+field, nil).
				WithContext("skill", s.Name)
		}
	}
	return s.Handler(ctx, ictx, kwargs)
}
