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

// Personalization adapts textbook content to the user's background and
// goals.
type Personalization struct {
	agent.Base
	svc Services
}

// NewPersonalization creates the personalization agent.
func NewPersonalization(svc Services) *Personalization {
	a := &Personalization{
		Base: agent.NewBase("PersonalizationAgent",
			"Personalizes textbook content based on user's software/hardware experience and learning goals."),
		svc: svc,
	}
	a.Register(core.NewSkill("personalizeContent",
		"Adapt content for user's software/hardware background",
		a.personalizeContent,
		core.WithRequiredContext("user_profile"),
		core.WithOutputType("dict")))
	a.Register(core.NewSkill("adaptDifficulty",
		"Adjust the difficulty level of content explanations",
		a.adaptDifficulty, core.WithOutputType("dict")))
	a.Register(core.NewSkill("recommendChapters",
		"Recommend chapters based on user goals and progress",
		a.recommendChapters, core.WithOutputType("dict")))
	return a
}

var toneByLevel = map[string]string{
	"beginner":     "simple and foundational with lots of analogies",
	"intermediate": "practical with real-world applications",
	"advanced":     "technically deep with advanced insights",
}

func (a *Personalization) personalizeContent(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	content := stringArg(kwargs, "content", "")
	message := stringArg(kwargs, "message", "")
	chapterTitle := stringArg(kwargs, "chapter_title", "")

	swExp := profileField(ictx, "software_experience", "beginner")
	hwExp := profileField(ictx, "hardware_experience", "beginner")
	goals := profileField(ictx, "learning_goals", "General understanding of Physical AI")
	level := ictx.ExperienceLevel()

	var b strings.Builder
	fmt.Fprintf(&b, `You are a personalized AI tutor for the Physical AI and Humanoid Robotics textbook.

User Background:
- Software Experience: %v
- Hardware Experience: %v
- Learning Goals: %v
- Overall Level: %s

`, swExp, hwExp, goals, level)
	if chapterTitle != "" {
		fmt.Fprintf(&b, "Chapter: %s\n", chapterTitle)
	}
	if content != "" {
		fmt.Fprintf(&b, "Content to personalize: %s\n", preview(content, 2000))
	}
	if message != "" {
		fmt.Fprintf(&b, "User request: %s\n", message)
	}
	fmt.Fprintf(&b, `
Please provide a personalized introduction and key concepts summary tailored to this user's background:

1. A personalized welcome (2-3 sentences acknowledging their background)
2. Key concepts explained at their level (bullet points)
3. What to focus on based on their experience
4. Suggested learning approach
5. Prerequisites they should review (if any)

Make the content %s.`, toneByLevel[level])

	if a.svc.LLM == nil {
		return map[string]any{
			"personalized_content": "Personalization service not available",
			"user_level":           level,
		}, nil
	}
	personalized, err := a.svc.generate(ctx, b.String(), "", nil, ictx.Language)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"personalized_content": personalized,
		"user_level":           level,
		"software_experience":  swExp,
		"hardware_experience":  hwExp,
		"learning_goals":       goals,
		"chapter_title":        chapterTitle,
	}, nil
}

var difficultyAdaptations = map[string]string{
	"beginner": `Simplify the content:
- Replace technical jargon with everyday language
- Add analogies from daily life
- Break complex concepts into smaller steps
- Add "Think of it like..." examples
- Define all technical terms`,

	"intermediate": `Balance the content:
- Keep essential technical terms but explain them
- Focus on practical applications
- Add code examples where relevant
- Connect concepts to real robotics systems
- Include "why this matters" sections`,

	"advanced": `Enhance the content:
- Use precise technical terminology
- Discuss edge cases and limitations
- Add mathematical foundations where relevant
- Compare different approaches
- Include research references and advanced topics`,
}

func (a *Personalization) adaptDifficulty(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	content, err := requireString(kwargs, "content")
	if err != nil {
		return nil, err
	}
	targetLevel := stringArg(kwargs, "target_level", ictx.ExperienceLevel())
	adaptation, ok := difficultyAdaptations[targetLevel]
	if !ok {
		adaptation = difficultyAdaptations["intermediate"]
	}

	prompt := fmt.Sprintf(`Adapt the following content for a %s level reader:

Original Content:
%s

%s

Provide the adapted version maintaining the core information.`, targetLevel, content, adaptation)

	if a.svc.LLM == nil {
		return map[string]any{
			"adapted_content": content,
			"target_level":    targetLevel,
			"error":           "LLM service not available",
		}, nil
	}
	adapted, err := a.svc.generate(ctx, prompt, "", nil, ictx.Language)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"adapted_content":  adapted,
		"original_content": preview(content, 500),
		"target_level":     targetLevel,
	}, nil
}

// chapterCatalog mirrors the textbook's chapter structure used for
// recommendations.
var chapterCatalog = []struct {
	id    string
	title string
	focus string
}{
	{"01", "Introduction to Physical AI", "overview, basics"},
	{"02", "Humanoid Robot Anatomy", "hardware, mechanics"},
	{"03", "Sensors and Perception", "hardware, sensors"},
	{"04", "Motion and Control", "software, control"},
	{"05", "AI and Machine Learning", "software, AI"},
	{"06", "Applications and Future", "applications"},
}

func (a *Personalization) recommendChapters(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	currentChapter := stringArg(kwargs, "current_chapter", "")
	interests := stringsArg(kwargs, "interests")

	goals := profileField(ictx, "learning_goals", "")
	swExp := profileField(ictx, "software_experience", "beginner")
	hwExp := profileField(ictx, "hardware_experience", "beginner")

	var chapterList strings.Builder
	for _, c := range chapterCatalog {
		fmt.Fprintf(&chapterList, "- Chapter %s: %s (Focus: %s)\n", c.id, c.title, c.focus)
	}
	interestLine := "Not specified"
	if len(interests) > 0 {
		interestLine = strings.Join(interests, ", ")
	}
	chapterLine := currentChapter
	if chapterLine == "" {
		chapterLine = "None"
	}

	prompt := fmt.Sprintf(`Based on the user's profile, recommend the best chapters to study next:

User Profile:
- Software Experience: %v
- Hardware Experience: %v
- Learning Goals: %v
- Current/Last Chapter: %s
- Interests: %s

Available Chapters:
%s
Provide:
1. Top 3 recommended chapters to study next
2. Why each chapter is recommended for this user
3. Suggested study order
4. Any chapters to review first based on prerequisites`,
		swExp, hwExp, goals, chapterLine, interestLine, chapterList.String())

	if a.svc.LLM == nil {
		return map[string]any{
			"recommendations": "Recommendation service not available",
			"user_level":      ictx.ExperienceLevel(),
		}, nil
	}
	recommendations, err := a.svc.generate(ctx, prompt, "", nil, ictx.Language)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"recommendations": recommendations,
		"user_level":      ictx.ExperienceLevel(),
		"current_chapter": currentChapter,
		"learning_goals":  goals,
	}, nil
}
