package registry

import (
	"context"
	"testing"

	"github.com/jllopis/paideia/pkg/agent"
	"github.com/jllopis/paideia/pkg/core"
)

type stubAgent struct {
	agent.Base
	tag string
}

func newStubAgent(name, tag string, skills ...string) *stubAgent {
	a := &stubAgent{Base: agent.NewBase(name, "stub"), tag: tag}
	for _, s := range skills {
		a.Register(core.NewSkill(s, "stub skill",
			func(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
				return tag, nil
			},
		))
	}
	return a
}

func TestRegisterLastWins(t *testing.T) {
	reg := New()
	reg.Register(newStubAgent("ContentAgent", "first", "explainConcepts"))
	reg.Register(newStubAgent("ContentAgent", "second", "explainConcepts"))

	if reg.Count() != 1 {
		t.Fatalf("expected 1 agent after replacement, got %d", reg.Count())
	}
	got := reg.Get("ContentAgent").(*stubAgent)
	if got.tag != "second" {
		t.Fatalf("later registration must replace earlier, got %s", got.tag)
	}
}

func TestReplacementKeepsOrder(t *testing.T) {
	reg := New()
	reg.Register(newStubAgent("A", "a1", "shared"))
	reg.Register(newStubAgent("B", "b1", "shared"))
	// Replacing A must not move it behind B for skill lookups.
	reg.Register(newStubAgent("A", "a2", "shared"))

	got := reg.GetBySkill("shared").(*stubAgent)
	if got.Name() != "A" || got.tag != "a2" {
		t.Fatalf("expected replaced A to stay first, got %s/%s", got.Name(), got.tag)
	}
}

func TestGetMissing(t *testing.T) {
	reg := New()
	if reg.Get("nope") != nil {
		t.Fatalf("missing agent must be nil, not an error")
	}
	if reg.GetBySkill("nope") != nil {
		t.Fatalf("missing skill must be nil, not an error")
	}
}

func TestGetBySkillRegistrationOrder(t *testing.T) {
	reg := New()
	reg.Register(newStubAgent("First", "f", "shared", "onlyFirst"))
	reg.Register(newStubAgent("Second", "s", "shared"))

	if got := reg.GetBySkill("shared"); got.Name() != "First" {
		t.Fatalf("shared skill must resolve in registration order, got %s", got.Name())
	}
	if got := reg.GetBySkill("onlyFirst"); got.Name() != "First" {
		t.Fatalf("expected First, got %s", got.Name())
	}
}

func TestUnregister(t *testing.T) {
	reg := New()
	reg.Register(newStubAgent("A", "a", "x"))
	if !reg.Unregister("A") {
		t.Fatalf("expected unregister to report existing agent")
	}
	if reg.Unregister("A") {
		t.Fatalf("expected unregister of missing agent to report false")
	}
	if reg.Get("A") != nil {
		t.Fatalf("unregistered agent must be gone")
	}
}

func TestListAndListAllSkills(t *testing.T) {
	reg := New()
	reg.Register(newStubAgent("A", "a", "s1", "s2"))
	reg.Register(newStubAgent("B", "b", "s3"))

	infos := reg.List()
	if len(infos) != 2 || infos[0].Name != "A" || infos[1].Name != "B" {
		t.Fatalf("unexpected agent listing: %+v", infos)
	}
	if len(infos[0].Skills) != 2 {
		t.Fatalf("expected 2 skills on A, got %d", len(infos[0].Skills))
	}

	skills := reg.ListAllSkills()
	if len(skills) != 3 {
		t.Fatalf("expected 3 skills total, got %d", len(skills))
	}
	if skills[0].Agent != "A" || skills[2].Agent != "B" {
		t.Fatalf("skills must carry owning agent names: %+v", skills)
	}
}

func TestClear(t *testing.T) {
	reg := New()
	reg.Register(newStubAgent("A", "a", "x"))
	reg.Clear()
	if reg.Count() != 0 {
		t.Fatalf("expected empty registry after clear")
	}
	if reg.GetBySkill("x") != nil {
		t.Fatalf("cleared registry must not resolve skills")
	}
}
