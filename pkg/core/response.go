package core

import "encoding/json"

// Citation references a source passage that backs an answer. The core
// treats it as opaque structured data produced by retrieval skills.
type Citation struct {
	ChapterID    string  `json:"chapter_id,omitempty"`
	ChapterTitle string  `json:"chapter_title,omitempty"`
	SectionID    string  `json:"section_id,omitempty"`
	SectionTitle string  `json:"section_title,omitempty"`
	Path         string  `json:"path,omitempty"`
	Score        float32 `json:"score,omitempty"`
}

// Response is the uniform envelope returned by every skill execution.
// Exactly one of "Success with empty Error" or "!Success with
// non-empty Error" holds.
type Response struct {
	Success   bool           `json:"success"`
	Data      any            `json:"data"`
	Agent     string         `json:"agent"`
	Skill     string         `json:"skill"`
	Citations []Citation     `json:"citations"`
	Metadata  map[string]any `json:"metadata"`
	Error     string         `json:"error"`
}

// MarshalJSON serializes the error field as JSON null on success, so
// every envelope carries all seven keys on the wire.
func (r Response) MarshalJSON() ([]byte, error) {
	type response Response
	out := struct {
		response
		Error *string `json:"error"`
	}{response: response(r)}
	if r.Error != "" {
		out.Error = &r.Error
	}
	return json.Marshal(out)
}

// Succeed builds a successful Response.
func Succeed(agent, skill string, data any) *Response {
	return &Response{
		Success:   true,
		Data:      data,
		Agent:     agent,
		Skill:     skill,
		Citations: []Citation{},
		Metadata:  make(map[string]any),
	}
}

// Fail builds a failed Response with the given error message.
func Fail(agent, skill, errMsg string) *Response {
	return &Response{
		Agent:     agent,
		Skill:     skill,
		Citations: []Citation{},
		Metadata:  make(map[string]any),
		Error:     errMsg,
	}
}

// WithCitations attaches citation records and returns the response for
// chaining.
func (r *Response) WithCitations(citations []Citation) *Response {
	if citations != nil {
		r.Citations = citations
	}
	return r
}
