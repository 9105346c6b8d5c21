package tutor

import (
	"fmt"
	"strings"
)

const hintSystemPrompt = `You are helping a learner improve an answer. Talk directly to the learner who gave the answer. You will be given:

1. QUESTION: the question that was asked
2. USER'S ANSWER: the learner's attempt
3. REFERENCE TEXT: a passage containing the correct answer

Your task is to:
1. Identify gaps or inaccuracies in the USER'S ANSWER.
2. Explain the correct answer based on the REFERENCE TEXT.
3. Add context only where it helps, and keep the response concise.
4. Return only the explanation, nothing else.`

func buildHintUserMessage(in HintInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "QUESTION:\n%s\n\n", in.Question)
	fmt.Fprintf(&b, "USER'S ANSWER:\n%s\n\n", in.Answer)
	fmt.Fprintf(&b, "REFERENCE TEXT:\n%s\n\n", in.ReferenceText)
	if in.Context != "" {
		fmt.Fprintf(&b, "EARLIER IN THIS EXERCISE:\n%s\n\n", in.Context)
	}
	b.WriteString("Please analyze the user's answer, identify any gaps or mistakes, and explain the correct answer based on the reference text.")
	return b.String()
}

const rewriteSystemPrompt = `<task>
Improve the clarity of the user's answer without altering its meaning, correctness, or completeness. Fix grammar, punctuation, spelling, terminology and referential clarity. Do not add new information or complete unfinished answers.
</task>

<instructions>
- Leave incomplete answers or sentence fragments as they are.
- Replace ambiguous references such as "it" with the specific subject.
- Use terminology from the question when the user's intent is clear.
- Never complete or correct an unfinished or incorrect answer.
- Output only the revised answer, without commentary.
</instructions>`

func buildRewriteUserMessage(question, answer string) string {
	return fmt.Sprintf("<question>\n%s\n</question>\n\n<answer>\n%s\n</answer>", question, answer)
}

const summarySystemPrompt = "You're a helpful assistant."

func buildSummaryUserMessage(transcript string) string {
	return fmt.Sprintf(`Based on the following chat history:

%s

Evaluate the user's performance concisely. Focus on:
1. Content accuracy
2. Key strengths
3. Areas for improvement

Limit your feedback to 3-4 sentences. Include a title. Format your response in HTML. Make it schematic. Do not wrap the response in code fences.`, transcript)
}
