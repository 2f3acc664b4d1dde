// Package registry provides the process-wide agent directory.
package registry

import (
	"log/slog"

	"github.com/jllopis/paideia/pkg/agent"
	"github.com/jllopis/paideia/pkg/core"
)

// AgentInfo is the introspection record for a registered agent.
type AgentInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Skills      []core.SkillInfo `json:"skills"`
	Status      core.Status      `json:"status"`
}

// Registry is the directory from agent name (and secondarily skill
// name) to agent instance. Lookups are safe to run concurrently across
// requests; Register, Unregister, and Clear are administrative
// operations for startup and test reset, and the caller must serialize
// them with respect to in-flight lookups. The registry itself takes no
// locks.
type Registry struct {
	agents map[string]agent.Agent
	order  []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{agents: make(map[string]agent.Agent)}
}

// Register stores an agent by name. A later registration under the
// same name replaces the earlier one; the original registration
// position is kept for skill lookup order.
func (r *Registry) Register(a agent.Agent) {
	name := a.Name()
	if _, exists := r.agents[name]; !exists {
		r.order = append(r.order, name)
	}
	r.agents[name] = a
	slog.Info("registered agent", "agent", name, "skills", len(a.Skills()))
}

// Unregister removes an agent by name and reports whether it existed.
func (r *Registry) Unregister(name string) bool {
	if _, ok := r.agents[name]; !ok {
		return false
	}
	delete(r.agents, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	slog.Info("unregistered agent", "agent", name)
	return true
}

// Get returns the agent registered under name, or nil.
func (r *Registry) Get(name string) agent.Agent {
	return r.agents[name]
}

// GetBySkill returns the first agent in registration order owning the
// named skill, or nil. When several agents share a skill name the
// registration order is the documented tie-break.
func (r *Registry) GetBySkill(skillName string) agent.Agent {
	for _, name := range r.order {
		if a := r.agents[name]; a.HasSkill(skillName) {
			return a
		}
	}
	return nil
}

// List returns a snapshot of all registered agents with their skills.
func (r *Registry) List() []AgentInfo {
	out := make([]AgentInfo, 0, len(r.order))
	for _, name := range r.order {
		a := r.agents[name]
		out = append(out, AgentInfo{
			Name:        a.Name(),
			Description: a.Description(),
			Skills:      a.Skills(),
			Status:      a.Status(),
		})
	}
	return out
}

// ListAllSkills returns every skill across all agents, annotated with
// the owning agent's name.
func (r *Registry) ListAllSkills() []core.SkillInfo {
	var out []core.SkillInfo
	for _, name := range r.order {
		for _, info := range r.agents[name].Skills() {
			info.Agent = name
			out = append(out, info)
		}
	}
	return out
}

// Clear drops all registered agents. Intended for startup and tests.
func (r *Registry) Clear() {
	r.agents = make(map[string]agent.Agent)
	r.order = nil
	slog.Info("cleared agent registry")
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	return len(r.agents)
}
