package router

import "regexp"

// intentCategory is one entry in the fixed classification table. The
// declaration order of the table is the documented tie-break: when two
// categories score equally, the first declared wins.
type intentCategory struct {
	name     string
	patterns []*regexp.Regexp
}

func mustPatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

// intentTable maps message text to intent categories. Each pattern is
// matched against the lower-cased message and contributes at most one
// point to its category's score.
var intentTable = []intentCategory{
	{
		name: "translation",
		patterns: mustPatterns(
			`translat(e|ion)`,
			`اردو`,
			`urdu`,
			`ترجم`,
			`convert.*to.*urdu`,
		),
	},
	{
		name: "personalization",
		patterns: mustPatterns(
			`personaliz(e|ation)`,
			`adapt.*for.*me`,
			`my.*level`,
			`based.*on.*my.*background`,
			`customize`,
			`tailor`,
		),
	},
	{
		name: "code",
		patterns: mustPatterns(
			`code`,
			`program`,
			`implement`,
			`write.*function`,
			`python`,
			`javascript`,
			`fix.*bug`,
			`debug`,
			`syntax`,
		),
	},
	{
		name: "content",
		patterns: mustPatterns(
			`explain`,
			`what.*is`,
			`describe`,
			`summary`,
			`summarize`,
			`quiz`,
			`question`,
			`diagram`,
			`chapter`,
			`topic`,
		),
	},
	{
		name: "rag",
		patterns: mustPatterns(
			`search`,
			`find`,
			`where.*in.*book`,
			`cite`,
			`reference`,
			`according.*to`,
			`textbook.*says`,
		),
	},
	{
		name: "auth",
		patterns: mustPatterns(
			`sign.*in`,
			`sign.*up`,
			`login`,
			`logout`,
			`profile`,
			`account`,
			`password`,
		),
	},
}

// target names the agent and default skill an intent resolves to.
type target struct {
	agent string
	skill string
}

// defaultTarget handles general questions that match no category and
// intents missing from the resolution table.
var defaultTarget = target{agent: "RAGAgent", skill: "ragQuery"}

// intentTargets maps each intent category to its agent and skill.
var intentTargets = map[string]target{
	"translation":     {agent: "TranslationAgent", skill: "translateToUrdu"},
	"personalization": {agent: "PersonalizationAgent", skill: "personalizeContent"},
	"code":            {agent: "CodeAgent", skill: "generateCode"},
	"content":         {agent: "ContentAgent", skill: "explainConcepts"},
	"rag":             {agent: "RAGAgent", skill: "ragQuery"},
	"auth":            {agent: "AuthAgent", skill: "getProfile"},
}
