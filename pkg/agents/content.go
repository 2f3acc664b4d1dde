// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/jllopis/paideia/pkg/agent"
	"github.com/jllopis/paideia/pkg/core"
)

// Content generates explanations, quizzes and summaries for textbook
// topics.
type Content struct {
	agent.Base
	svc Services
}

// NewContent creates the content generation agent.
func NewContent(svc Services) *Content {
	a := &Content{
		Base: agent.NewBase("ContentAgent",
			"Generates chapter explanations, diagrams, quizzes, and summaries for the Physical AI textbook."),
		svc: svc,
	}
	a.Register(core.NewSkill("createContent",
		"Generate educational content (explanations, summaries, diagram descriptions) for a topic",
		a.createContent, core.WithOutputType("dict")))
	a.Register(core.NewSkill("generateQuizzes",
		"Create quiz questions for a chapter or topic with adjustable difficulty",
		a.generateQuizzes, core.WithOutputType("dict")))
	a.Register(core.NewSkill("explainConcepts",
		"Explain concepts at the user's experience level with personalized context",
		a.explainConcepts, core.WithOutputType("dict")))
	return a
}

var contentPrompts = map[string]string{
	"explanation": `Create a clear, educational explanation of the following topic from the Physical AI and Humanoid Robotics textbook:

Topic: %s

Provide:
1. A brief introduction (2-3 sentences)
2. Key concepts with clear definitions
3. Real-world applications or examples
4. Summary points

Keep the explanation accessible for students.`,

	"summary": `Provide a concise summary of the following topic:

Topic: %s

Include:
- Main ideas (3-5 bullet points)
- Key takeaways
- Important terminology`,

	"diagram_description": `Describe a diagram that would help explain:

Topic: %s

Include:
- What the diagram should show
- Key components to label
- Relationships between elements
- Suggested diagram type (flowchart, block diagram, etc.)`,
}

func (a *Content) createContent(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	topic, err := requireString(kwargs, "topic")
	if err != nil {
		return nil, err
	}
	contentType := stringArg(kwargs, "content_type", "explanation")
	tmpl, ok := contentPrompts[contentType]
	if !ok {
		tmpl = contentPrompts["explanation"]
	}

	if a.svc.LLM == nil {
		return map[string]any{
			"content":      fmt.Sprintf("Content generation for '%s' - LLM service not available", topic),
			"topic":        topic,
			"content_type": contentType,
		}, nil
	}
	content, err := a.svc.generate(ctx, fmt.Sprintf(tmpl, topic), "", nil, ictx.Language)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"content":      content,
		"topic":        topic,
		"content_type": contentType,
		"language":     ictx.Language,
	}, nil
}

var quizDifficulty = map[string]string{
	"beginner":     "Create simple, foundational questions focusing on definitions and basic concepts.",
	"intermediate": "Create questions that test understanding and application of concepts.",
	"advanced":     "Create challenging questions that require analysis, synthesis, and deep understanding.",
}

func (a *Content) generateQuizzes(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	topic, err := requireString(kwargs, "topic")
	if err != nil {
		return nil, err
	}
	numQuestions := intArg(kwargs, "num_questions", 5)
	difficulty := stringArg(kwargs, "difficulty", ictx.ExperienceLevel())
	instructions, ok := quizDifficulty[difficulty]
	if !ok {
		instructions = quizDifficulty["intermediate"]
	}

	prompt := fmt.Sprintf(`Generate %d quiz questions about the following topic from the Physical AI textbook:

Topic: %s

Difficulty Level: %s
%s

For each question, provide:
1. The question text
2. Four multiple choice options (A, B, C, D)
3. The correct answer
4. A brief explanation of why the answer is correct

Format as a structured list.`, numQuestions, topic, difficulty, instructions)

	if a.svc.LLM == nil {
		return map[string]any{
			"questions":     fmt.Sprintf("Quiz generation for '%s' - LLM service not available", topic),
			"topic":         topic,
			"num_questions": numQuestions,
			"difficulty":    difficulty,
		}, nil
	}
	questions, err := a.svc.generate(ctx, prompt, "", nil, ictx.Language)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"questions":     questions,
		"topic":         topic,
		"num_questions": numQuestions,
		"difficulty":    difficulty,
	}, nil
}

var levelInstructions = map[string]string{
	"beginner":     "Use simple language, avoid jargon, provide many examples, and explain foundational concepts first.",
	"intermediate": "Balance technical depth with clarity, assume basic knowledge, focus on practical applications.",
	"advanced":     "Use technical terminology freely, focus on nuances and advanced applications, discuss trade-offs.",
}

func (a *Content) explainConcepts(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	message, err := requireString(kwargs, "message")
	if err != nil {
		return nil, err
	}
	concepts := stringsArg(kwargs, "concepts")
	level := ictx.ExperienceLevel()

	var userContext string
	if len(ictx.UserProfile) > 0 {
		userContext = fmt.Sprintf(`
User Background:
- Software Experience: %v
- Hardware Experience: %v
- Learning Goals: %v
`,
			profileField(ictx, "software_experience", "unknown"),
			profileField(ictx, "hardware_experience", "unknown"),
			profileField(ictx, "learning_goals", ""))
	}

	var conceptLine string
	if len(concepts) > 0 {
		conceptLine = "Specific concepts: " + strings.Join(concepts, ", ")
	}
	instructions, ok := levelInstructions[level]
	if !ok {
		instructions = levelInstructions["intermediate"]
	}

	prompt := fmt.Sprintf(`Explain the following concept(s) from the Physical AI and Humanoid Robotics textbook:

Query: %s
%s

%s

Experience Level: %s
Instructions: %s

Provide a clear, educational explanation tailored to the user's background.`,
		message, conceptLine, userContext, level, instructions)

	if len(concepts) == 0 {
		concepts = []string{message}
	}
	if a.svc.LLM == nil {
		return map[string]any{
			"explanation":      fmt.Sprintf("Explanation for '%s' - LLM service not available", message),
			"concepts":         concepts,
			"experience_level": level,
		}, nil
	}
	explanation, err := a.svc.generate(ctx, prompt, "", historyTurns(ictx), ictx.Language)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"explanation":      explanation,
		"concepts":         concepts,
		"experience_level": level,
		"language":         ictx.Language,
	}, nil
}

func profileField(ictx *core.Context, key, def string) any {
	if v, ok := ictx.UserProfile[key]; ok {
		return v
	}
	return def
}
