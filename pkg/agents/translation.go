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
	"github.com/jllopis/paideia/pkg/errors"
)

// Unicode bidi control characters used for RTL output.
const (
	rtlMark  = "‏" // Right-to-Left Mark
	ltrMark  = "‎" // Left-to-Right Mark
	rtlEmbed = "‫" // Right-to-Left Embedding
	popDir   = "‬" // Pop Directional Formatting
)

// Translation translates textbook content from English to Urdu and
// formats it for right-to-left display.
type Translation struct {
	agent.Base
	svc Services
}

// NewTranslation creates the Urdu translation agent.
func NewTranslation(svc Services) *Translation {
	a := &Translation{
		Base: agent.NewBase("TranslationAgent",
			"Translates textbook content from English to Urdu with RTL formatting support."),
		svc: svc,
	}
	a.Register(core.NewSkill("translateToUrdu",
		"Translate content from English to Urdu with technical accuracy",
		a.translateToUrdu, core.WithOutputType("dict")))
	a.Register(core.NewSkill("formatRTL",
		"Format content for proper Right-to-Left display",
		a.formatRTL, core.WithOutputType("dict")))
	a.Register(core.NewSkill("translateTerms",
		"Translate technical terms with transliteration and explanations",
		a.translateTerms, core.WithOutputType("dict")))
	return a
}

var urduStyles = map[string]string{
	"educational": `آپ ایک ماہر اردو مترجم اور ٹیکنیکل رائٹر ہیں۔
سادہ اور آسان اردو استعمال کریں جو طلباء کے لیے سمجھنا آسان ہو۔
ٹیکنیکل اصطلاحات کو انگریزی میں رکھیں لیکن اردو میں وضاحت دیں۔`,

	"formal": `رسمی اور معیاری اردو استعمال کریں۔
علمی زبان اور تعلیمی انداز اپنائیں۔`,

	"conversational": `بول چال کی سادہ اردو استعمال کریں۔
دوستانہ اور آسان انداز میں لکھیں۔`,
}

func (a *Translation) translateToUrdu(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	text := stringArg(kwargs, "content", "")
	if text == "" {
		text = stringArg(kwargs, "message", "")
	}
	if text == "" {
		return nil, errors.New(errors.CodeInvalidInput, "missing content or message to translate", nil)
	}
	chapterTitle := stringArg(kwargs, "chapter_title", "")
	style := stringArg(kwargs, "translation_style", "educational")
	instructions, ok := urduStyles[style]
	if !ok {
		instructions = urduStyles["educational"]
	}

	var chapterLine string
	if chapterTitle != "" {
		chapterLine = "باب کا عنوان: " + chapterTitle
	}
	prompt := fmt.Sprintf(`آپ ایک ماہر اردو مترجم اور ٹیکنیکل رائٹر ہیں۔ براہ کرم اس مواد کا اردو میں تفصیلی ترجمہ کریں۔

%s

ترجمے کی ہدایات:
%s

1. باب کا عنوان اردو میں لکھیں
2. اہم تصورات کا خلاصہ اردو میں لکھیں (تقریباً 400-500 الفاظ)
3. اہم ٹیکنیکل اصطلاحات کو انگریزی اور اردو دونوں میں لکھیں
4. مطالعے کی تجاویز اردو میں دیں
5. سادہ اور آسان اردو استعمال کریں جو طلباء کے لیے سمجھنا آسان ہو

مواد جس کا ترجمہ کرنا ہے:
%s

Please respond entirely in Urdu script. Use proper Urdu grammar and sentence structure. Keep technical terms in English with Urdu transliteration where helpful.`,
		chapterLine, instructions, preview(text, 3000))

	if a.svc.LLM == nil {
		return map[string]any{
			"translation":   "ترجمہ کی خدمت دستیاب نہیں ہے",
			"original_text": text,
			"error":         "LLM service not available",
		}, nil
	}
	translation, err := a.svc.generate(ctx, prompt, "", nil, "ur")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"translation":       translation,
		"original_text":     preview(text, 500),
		"chapter_title":     chapterTitle,
		"translation_style": style,
		"direction":         "rtl",
		"language":          "ur",
	}, nil
}

var englishTermRE = regexp.MustCompile(`[A-Za-z][A-Za-z0-9\s\-_.]+`)

func (a *Translation) formatRTL(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	content, err := requireString(kwargs, "content")
	if err != nil {
		return nil, err
	}
	includeEnglish := boolArg(kwargs, "include_english_terms", true)

	formatted := rtlEmbed + content + popDir
	if includeEnglish {
		formatted = englishTermRE.ReplaceAllStringFunc(formatted, func(term string) string {
			if len(strings.TrimSpace(term)) > 2 {
				return ltrMark + term + rtlMark
			}
			return term
		})
	}

	return map[string]any{
		"formatted_content": formatted,
		"original_content":  content,
		"direction":         "rtl",
		"rtl_markers_used":  true,
		"css_direction":     "rtl",
		"css_text_align":    "right",
	}, nil
}

func (a *Translation) translateTerms(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	terms := stringsArg(kwargs, "terms")
	if len(terms) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "missing required argument: terms", nil)
	}
	includeTransliteration := boolArg(kwargs, "include_transliteration", true)

	var termList strings.Builder
	for _, term := range terms {
		fmt.Fprintf(&termList, "- %s\n", term)
	}
	prompt := fmt.Sprintf(`Translate the following technical terms from English to Urdu.
For each term provide:
1. The English term
2. Urdu translation (in Urdu script)
3. Transliteration (how to pronounce in Roman Urdu)
4. Brief explanation in Urdu

Terms to translate:
%s
Format each term clearly with all four components.`, termList.String())

	if a.svc.LLM == nil {
		return map[string]any{
			"translations":   "Translation service not available",
			"original_terms": terms,
		}, nil
	}
	translations, err := a.svc.generate(ctx, prompt, "", nil, "ur")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"translations":            translations,
		"original_terms":          terms,
		"include_transliteration": includeTransliteration,
	}, nil
}
