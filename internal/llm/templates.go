package llm

import "fmt"

// SelectionSystemPrompt instructs the reasoner to pick files from the
// compact tree and reply with the selection JSON contract.
const SelectionSystemPrompt = `You navigate source code repositories. Given an outline of a repository and a question about it, decide which files someone should read to answer the question.

The outline lists directories, files with their language, and the functions and classes each file defines.

Work through it step by step:
- Which concepts does the question touch (authentication, storage, HTTP handlers, parsing, ...)?
- Which directories or modules would hold that code?
- Which files define functions or classes related to it?

Reply with JSON only, in this shape:
{
  "reasoning": "short explanation of how you navigated the outline",
  "relevant_files": [
    {"path": "path/to/file.py", "relevance": "why this file matters", "focus": ["function_name", "ClassName"]}
  ]
}

List only files that are genuinely relevant, between 1 and 5 of them.`

// AnswerSystemPrompt instructs the reasoner to answer from retrieved code.
const AnswerSystemPrompt = `You are a code assistant. You are given source files retrieved from a repository and a question about that repository.

- Answer the question directly and concisely.
- Point to the specific code that supports your answer.
- Quote short snippets when they help.
- Say so when the provided code does not fully answer the question.
- Format code with markdown code blocks.`

// BuildSelectionMessages returns the stage-one conversation asking which
// files answer question.
func BuildSelectionMessages(tree, question string) []Message {
	user := fmt.Sprintf(`## Repository Structure

%s

## Question
%s

Analyze the repository structure and identify the most relevant files to answer this question. Return JSON.`, tree, question)

	return []Message{
		{Role: RoleSystem, Content: SelectionSystemPrompt},
		{Role: RoleUser, Content: user},
	}
}

// BuildAnswerMessages returns the stage-two conversation answering question
// from the assembled code context.
func BuildAnswerMessages(context, question string) []Message {
	user := fmt.Sprintf(`## Relevant Code

%s

## Question
%s

Please answer the question based on the code provided above.`, context, question)

	return []Message{
		{Role: RoleSystem, Content: AnswerSystemPrompt},
		{Role: RoleUser, Content: user},
	}
}
