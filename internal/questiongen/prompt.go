package questiongen

import (
	"fmt"
	"strings"
)

const refineSystemPrompt = `<task>
Create follow-up questions that guide the user towards correctly answering an ORIGINAL QUESTION they struggled with.
</task>

<context>
The user answered a question incorrectly. Break down the concept asked in the ORIGINAL QUESTION using their PREVIOUS ANSWER as a reference.
</context>

<objective>
Generate the fewest follow-up questions necessary, ideally one or two. They should be simple enough that the user gets most of them right.
</objective>

<response_format>
- Present each question on a separate line. Do not number the questions. Each question ends with a question mark.
- Use a '|' separator between the question and its expected answer.
- Do not add anything other than the questions and answers.
</response_format>

<instructions>
- Break the ORIGINAL QUESTION into smaller or simpler parts and ask one question per part. Do not ask about anything outside the ORIGINAL QUESTION.
- Each follow-up question must be answerable on its own, with only the PREVIOUS ANSWER as context.
- Summarize relevant information from the PROVIDED TEXT when needed for context.
- Tailor the questions and hints to the PREVIOUS ANSWER.
</instructions>

<example_1>
ORIGINAL QUESTION: What is the capital of France?
PREVIOUS ANSWER: Lyon
FEEDBACK: Incorrect. The capital of France is Paris, not Lyon.

Lyon is a city in France, but it's not the capital. The capital is known for the Eiffel Tower. What is the capital of France? | Paris
</example_1>

<example_2>
ORIGINAL QUESTION: What is the process by which plants convert sunlight into energy?
PREVIOUS ANSWER: Respiration
FEEDBACK: Incorrect. The process is photosynthesis. Respiration is how plants and animals use energy.

Respiration is how living organisms use energy, but plants use sunlight to create energy in a process that starts with "photo." What is this process called? | Photosynthesis
Photosynthesis occurs in a part of the plant cell where chlorophyll is found. Can you name this part of the cell? | Chloroplast
</example_2>`

func buildRefineUserMessage(in RefinementInput) string {
	var b strings.Builder
	b.WriteString("<user_input>\n")
	fmt.Fprintf(&b, "PROVIDED TEXT: %s\n", in.ReferenceText)
	fmt.Fprintf(&b, "ORIGINAL QUESTION: %s\n", in.Question)
	fmt.Fprintf(&b, "PREVIOUS ANSWER: %s\n", in.Answer)
	fmt.Fprintf(&b, "FEEDBACK: %s\n", in.Feedback)
	if in.Context != "" {
		fmt.Fprintf(&b, "CONVERSATION SO FAR:\n%s\n", in.Context)
	}
	b.WriteString("</user_input>")
	return b.String()
}

func buildSeedSystemPrompt(count int) string {
	return fmt.Sprintf(`Your task is to generate %d questions that assess understanding of the key concepts in the provided text.

Instructions:
1. Create exactly %d questions, each focusing on a different key concept from the text.
2. Each question must end with a question mark and be answerable from the information in the text.
3. Provide a short, concise answer for each question, using only information explicitly stated in the text.

Guidelines:
- Questions are clear and specific, not open-ended.
- Include the context each question needs so it is understandable without having read the text.
- Focus on the most important information in the text.

Example:
{"questions": [{"question": "What is the capital of France?", "answer": "Paris"}]}`, count, count)
}

func buildSeedUserMessage(text string, count int) string {
	return fmt.Sprintf("Please generate %d questions based on the following text:\n\n%s", count, text)
}
