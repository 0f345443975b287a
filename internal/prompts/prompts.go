// Package prompts builds the instruction prompts sent to the language model.
// Every builder is a pure function of its inputs.
package prompts

import (
	"fmt"
	"strings"
)

// InsufficientContextAnswer is the phrase the QA prompt asks the model to use
// when the retrieved context does not contain the answer.
const InsufficientContextAnswer = "I don't have enough information to answer this"

const routerTemplate = `You are a query router for an internal AI assistant. Your job is to determine which tool should handle a given query.

Available tools:
1. QA Tool ("qa"): Answers factual questions about bugs, features, or user feedback using internal documentation.
2. Summary Tool ("summary"): Takes issue text and summarizes the reported issues, affected features, and severity.
3. Unknown Tool ("unknown"): For anything that doesn't fit.

USER QUERY: %s

### EXAMPLES

User Query: "What are the issues reported on email notifications?"
Response:
{"tool": "qa", "reasoning": "The user is asking about issues mentioned in the documentation.", "reformulated_query": "List all reported issues related to email notifications."}

User Query: "Users say the dashboard doesn't update on mobile."
Response:
{"tool": "summary", "reasoning": "This is an issue report needing summarization of problem and affected component.", "reformulated_query": "Summarize: Users say the dashboard doesn't update on mobile."}

User Query: "Hello, can you help me?"
Response:
{"tool": "unknown", "reasoning": "This query doesn't match QA or summarization tasks.", "reformulated_query": "Hello, can you help me?"}

INSTRUCTIONS:
Analyze the query and determine which tool should handle it.
If the query doesn't match any tool, respond with "unknown".

Think step-by-step about what the user is asking:
1. What is the user trying to accomplish?
2. Which tool best addresses this need?
3. How should I reformulate the query for the selected tool?

Respond with a single JSON object and nothing else, containing:
- tool: "qa", "summary", or "unknown"
- reasoning: Brief explanation of why you chose this tool
- reformulated_query: The query reformulated for the chosen tool

RESPONSE:
`

const qaTemplate = `You are an AI assistant for a product and engineering team.
Your task is to answer questions accurately based on the internal documents provided.

Question: %s

Context information from relevant documents:
%s

Instructions:
1. Answer based ONLY on the context provided
2. If the answer is not in the context, say "%s"
3. Be concise and direct in your answer
4. Format the answer in a structured way if appropriate

Answer:
`

const summaryTemplate = `You are a technical analyst responsible for categorizing and summarizing product issues.

ISSUE TEXT:
%s

INSTRUCTIONS:
Analyze the issue text and provide a structured summary with the following components:
1. Extract all distinct reported issues
2. Identify all affected features or components
3. Assess the severity (Critical, High, Medium, Low)

Format your response as a single JSON object with these keys:
- reported_issues: [list of issues]
- affected_components: [list of components]
- severity: "severity level"

SUMMARY:
`

// Router builds the classification prompt for query.
func Router(query string) string {
	return fmt.Sprintf(routerTemplate, query)
}

// QA builds the answering prompt. contexts are the retrieved fragment texts,
// joined by a blank line.
func QA(question string, contexts []string) string {
	return fmt.Sprintf(qaTemplate, question, strings.Join(contexts, "\n\n"), InsufficientContextAnswer)
}

// Summary builds the issue summarization prompt.
func Summary(issueText string) string {
	return fmt.Sprintf(summaryTemplate, issueText)
}
