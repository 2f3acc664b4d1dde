// Package core defines the request-scoped context, skill, and response
// model shared by every Paideia agent.
package core

import (
	"fmt"
	"time"
)

// traceLimit bounds trace summaries so long sessions stay cheap to keep
// in memory.
const traceLimit = 500

// Turn is a single prior message in the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TraceEntry records one executed skill. Entries are immutable once
// appended.
type TraceEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Agent     string    `json:"agent"`
	Skill     string    `json:"skill"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
}

// Context carries mutable request-scoped state through every dispatch.
// A Context is owned by a single request: it must not be shared by two
// concurrently running dispatches. Agents append to Trace and the
// router writes routing decisions into Metadata; everything else is
// owned by the caller.
type Context struct {
	UserID              string            `json:"user_id,omitempty"`
	SessionID           string            `json:"session_id,omitempty"`
	Language            string            `json:"language"`
	UserProfile         map[string]any    `json:"user_profile,omitempty"`
	ConversationHistory []Turn            `json:"conversation_history"`
	Metadata            map[string]any    `json:"metadata"`
	Trace               []TraceEntry      `json:"trace"`
}

// NewContext creates a Context with initialized maps and English as the
// default language.
func NewContext() *Context {
	return &Context{
		Language: "en",
		Metadata: make(map[string]any),
	}
}

// AddTrace appends an execution trace entry. Input and output are
// rendered to strings and truncated to 500 characters.
func (c *Context) AddTrace(agent, skill string, input, output any) {
	c.Trace = append(c.Trace, TraceEntry{
		Timestamp: time.Now().UTC(),
		Agent:     agent,
		Skill:     skill,
		Input:     truncate(fmt.Sprintf("%v", input)),
		Output:    truncate(fmt.Sprintf("%v", output)),
	})
}

// Field returns the named context field and whether it holds a usable
// value. Names follow the wire shape: user_id, session_id, language,
// user_profile, conversation_history.
func (c *Context) Field(name string) (any, bool) {
	switch name {
	case "user_id":
		return c.UserID, c.UserID != ""
	case "session_id":
		return c.SessionID, c.SessionID != ""
	case "language":
		return c.Language, c.Language != ""
	case "user_profile":
		return c.UserProfile, len(c.UserProfile) > 0
	case "conversation_history":
		return c.ConversationHistory, len(c.ConversationHistory) > 0
	default:
		return nil, false
	}
}

// experienceScale is the ordinal scale used for profile experience
// values. Unknown values score 0.
var experienceScale = map[string]int{
	"none":         0,
	"beginner":     1,
	"intermediate": 2,
	"advanced":     3,
	"expert":       4,
}

// ExperienceLevel derives the user's experience tier from the profile.
// It averages the software and hardware experience ordinals: >= 3 is
// advanced, >= 1.5 is intermediate, everything else (including a
// missing profile) is beginner. The tier is recomputed on every call.
func (c *Context) ExperienceLevel() string {
	if len(c.UserProfile) == 0 {
		return "beginner"
	}
	avg := float64(experienceOrdinal(c.UserProfile["software_experience"])+
		experienceOrdinal(c.UserProfile["hardware_experience"])) / 2
	switch {
	case avg >= 3:
		return "advanced"
	case avg >= 1.5:
		return "intermediate"
	default:
		return "beginner"
	}
}

func experienceOrdinal(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	return experienceScale[s]
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= traceLimit {
		return s
	}
	return string(runes[:traceLimit])
}
