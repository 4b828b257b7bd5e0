package research

import (
	"fmt"
	"strings"

	"github.com/clipperhq/clipper/pkg/knowledge"
	"github.com/clipperhq/clipper/pkg/llm"
)

const answerInstruction = `Answer the following question based ONLY on the provided context. If you don't know the answer, say "I don't have enough information to answer this question." Do not make up information.`

// buildMessages assembles the grounded conversation for a question. Retrieved
// chunks are joined in rank order with blank lines between them.
func buildMessages(question string, chunks []knowledge.RankedChunk) []llm.Message {
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}

	content := fmt.Sprintf("Context: %s\n\nQuestion: %s\n\nAnswer:",
		strings.Join(texts, "\n\n"), question)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: answerInstruction},
		{Role: llm.RoleUser, Content: content},
	}
}
