package llm

import "fmt"

const systemPrompt = "You are a professional content rewriter."

func rewritePrompt(text, style string) string {
	if style == "" {
		style = "professional"
	}
	return fmt.Sprintf(
		"Please rewrite the following content in a %s style while maintaining the core message and key information:\n\n%s\n\nMake it engaging, well-structured, and original while preserving the main points.",
		style, text)
}
