// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jllopis/paideia/pkg/agent"
	"github.com/jllopis/paideia/pkg/core"
)

// Code produces, fixes and explains code samples for robotics concepts.
type Code struct {
	agent.Base
	svc Services
}

// NewCode creates the code assistance agent.
func NewCode(svc Services) *Code {
	a := &Code{
		Base: agent.NewBase("CodeAgent",
			"Produces runnable code samples, debugs code, and explains code functionality for robotics applications."),
		svc: svc,
	}
	a.Register(core.NewSkill("generateCode",
		"Generate code examples for robotics and AI concepts",
		a.generateCode, core.WithOutputType("dict")))
	a.Register(core.NewSkill("fixCode",
		"Debug and fix code issues with explanations",
		a.fixCode, core.WithOutputType("dict")))
	a.Register(core.NewSkill("explainCode",
		"Explain code functionality at the user's level",
		a.explainCode, core.WithOutputType("dict")))
	return a
}

var codeBlockRE = regexp.MustCompile("(?s)```(?:\\w+)?\n(.*?)```")

// extractCodeBlocks pulls fenced code blocks out of a markdown reply.
func extractCodeBlocks(text string) []string {
	matches := codeBlockRE.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

func (a *Code) generateCode(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	message, err := requireString(kwargs, "message")
	if err != nil {
		return nil, err
	}
	language := stringArg(kwargs, "language", "python")
	concept := stringArg(kwargs, "concept", "")

	var conceptLine string
	if concept != "" {
		conceptLine = "Concept: " + concept
	}
	prompt := fmt.Sprintf(`Generate a code example for the following robotics/AI concept:

Request: %s
%s
Programming Language: %s

Requirements:
1. Write clean, well-commented code
2. Include necessary imports
3. Add docstrings explaining the purpose
4. Provide example usage
5. Keep the code runnable and practical

Focus on Physical AI and Humanoid Robotics applications.

Format the code in a code block with the language specified.`, message, conceptLine, language)

	if a.svc.LLM == nil {
		return map[string]any{
			"code":        fmt.Sprintf("# Code generation for '%s' - LLM service not available", message),
			"explanation": "LLM service not available",
			"language":    language,
		}, nil
	}
	// Code is generated in English regardless of the session language.
	response, err := a.svc.generate(ctx, prompt, "", nil, "en")
	if err != nil {
		return nil, err
	}

	code := response
	if blocks := extractCodeBlocks(response); len(blocks) > 0 {
		code = blocks[0]
	}
	if concept == "" {
		concept = message
	}
	return map[string]any{
		"code":        code,
		"explanation": response,
		"language":    language,
		"concept":     concept,
	}, nil
}

func (a *Code) fixCode(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	code, err := requireString(kwargs, "code")
	if err != nil {
		return nil, err
	}
	errorMessage := stringArg(kwargs, "error_message", "")

	var errorLine string
	if errorMessage != "" {
		errorLine = "Error message: " + errorMessage
	}
	prompt := fmt.Sprintf("Debug and fix the following code:\n\n```\n%s\n```\n\n%s\n\n", code, errorLine) + `Please:
1. Identify the issue(s) in the code
2. Explain what's wrong
3. Provide the corrected code
4. Explain the fix

Focus on common issues in robotics/AI code like:
- Sensor data handling
- Motor control logic
- Timing/synchronization issues
- Data type mismatches`

	if a.svc.LLM == nil {
		return map[string]any{
			"fixed_code":    code,
			"explanation":   "LLM service not available",
			"original_code": code,
		}, nil
	}
	response, err := a.svc.generate(ctx, prompt, "", nil, "en")
	if err != nil {
		return nil, err
	}

	var fixed string
	if blocks := extractCodeBlocks(response); len(blocks) > 0 {
		fixed = blocks[0]
	}
	return map[string]any{
		"fixed_code":    fixed,
		"explanation":   response,
		"original_code": code,
		"error_message": errorMessage,
	}, nil
}

var detailInstructions = map[string]string{
	"brief":    "Provide a brief, high-level explanation in 2-3 sentences.",
	"medium":   "Explain the main components and logic flow. Include key concepts.",
	"detailed": "Provide a line-by-line explanation with all concepts explained.",
}

var codeLevelAdjustments = map[string]string{
	"beginner":     "Explain every concept, avoid assumptions about prior knowledge.",
	"intermediate": "Focus on the robotics-specific aspects and interesting patterns.",
	"advanced":     "Focus on performance considerations, best practices, and potential improvements.",
}

func (a *Code) explainCode(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	code, err := requireString(kwargs, "code")
	if err != nil {
		return nil, err
	}
	detailLevel := stringArg(kwargs, "detail_level", "medium")
	userLevel := ictx.ExperienceLevel()

	detail, ok := detailInstructions[detailLevel]
	if !ok {
		detail = detailInstructions["medium"]
	}
	prompt := fmt.Sprintf("Explain the following code:\n\n```\n%s\n```\n\nDetail Level: %s\n%s\n\nUser Experience Level: %s\n%s\n\n",
		code, detailLevel, detail, userLevel, codeLevelAdjustments[userLevel]) + `Include:
1. Overall purpose of the code
2. Key components/functions explained
3. How it relates to Physical AI/robotics concepts
4. Any important notes or caveats`

	if a.svc.LLM == nil {
		return map[string]any{
			"explanation": "LLM service not available",
			"code":        code,
		}, nil
	}
	explanation, err := a.svc.generate(ctx, prompt, "", nil, ictx.Language)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"explanation":  explanation,
		"code":         code,
		"detail_level": detailLevel,
		"user_level":   userLevel,
	}, nil
}
