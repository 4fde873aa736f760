package answer

import "fmt"

const noInfoTemplate = "I'm designed to answer questions about the uploaded PDF document only. " +
	"Please try asking questions related to the content of the uploaded document, " +
	"or upload a different document with the information you're looking for about \"%s\"."

const (
	emptyReplyMessage   = "Unable to generate a specific response. Please try reformulating your question or check other reference sources."
	callFailureTemplate = "Unable to generate a specific response due to a technical error.\n\nTechnical error details: %s"
)

const systemPrompt = `You are an assistant for answering questions based on the provided document. Use only the text in the Document Reference to answer the query.

If the document reference contains information that answers the query, format your response EXACTLY as follows:
SOURCE: Document Reference
Based on the Document Reference: <a comprehensive summary of the specific information from the provided text, maintaining accuracy and detail>

If the document reference does NOT contain information that answers the query, format your response EXACTLY as follows:
SOURCE: GENERATED - NO RELEVANT INFORMATION
%s

The first line of your response must be one of the two SOURCE lines above, with nothing before it.`

// NoInfo returns the refusal body for query.
func NoInfo(query string) string {
	return fmt.Sprintf(noInfoTemplate, query)
}

func buildSystemPrompt(query string) string {
	return fmt.Sprintf(systemPrompt, NoInfo(query))
}

func buildUserPrompt(query, excerpts string) string {
	return fmt.Sprintf("Query: %s\n\nDocument Reference:\n%s", query, excerpts)
}
