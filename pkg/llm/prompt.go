package llm

import (
	"fmt"
	"strings"
)

// TutorSystemPrompt restricts answers to textbook content and sets the
// citation format used by the RAG answer path.
const TutorSystemPrompt = `You are a helpful tutor for the Physical AI and Humanoid Robotics textbook.

IMPORTANT RULES:
1. Answer questions ONLY using the provided context from the textbook.
2. Always cite the source section for each fact you mention.
3. If the answer cannot be found in the context, say: "I don't have information about that in the textbook. Here are some topics I can help with: [list relevant topics from context]"
4. Keep responses clear, educational, and concise.
5. Use the same language as the user's question (English or Urdu).
6. Format code examples with proper syntax highlighting hints.
7. For mathematical concepts, use clear notation.

When citing sources, use this format: [Chapter: Section]`

// historyWindow bounds how many prior turns are replayed to the model.
const historyWindow = 10

// HistoryTurn is one prior exchange passed into prompt composition.
type HistoryTurn struct {
	Role    string
	Content string
}

// ComposeTutorRequest builds a chat request for a tutoring query:
// system prompt, a bounded window of conversation history, retrieved
// context, and the query itself. Context may be empty for
// generation-only skills.
func ComposeTutorRequest(query, retrieved string, history []HistoryTurn, language string) ChatRequest {
	messages := []Message{{Role: RoleSystem, Content: TutorSystemPrompt}}

	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, turn := range history[start:] {
		role := RoleUser
		if turn.Role == "assistant" || turn.Role == "model" {
			role = RoleAssistant
		}
		messages = append(messages, Message{Role: role, Content: turn.Content})
	}

	var b strings.Builder
	if retrieved != "" {
		fmt.Fprintf(&b, "Context from the textbook:\n%s\n\n", retrieved)
	}
	if language == "ur" {
		b.WriteString("Please answer in Urdu.\n\n")
	}
	fmt.Fprintf(&b, "Question: %s", query)
	messages = append(messages, Message{Role: RoleUser, Content: b.String()})

	return ChatRequest{Messages: messages}
}
