package genai

import "strings"

// noCandidatesReply is substituted when a response carries no usable content.
const noCandidatesReply = "No candidates returned"

// ReplyText extracts the reply string from a response: the first candidate's
// textual parts joined with a blank line, the embedded error message when the
// payload carries one, or a fixed fallback literal.
func ReplyText(resp *GenerateContentResponse) string {
	if resp == nil {
		return noCandidatesReply
	}
	if len(resp.Candidates) > 0 {
		if content := resp.Candidates[0].Content; content != nil {
			parts := make([]string, 0, len(content.Parts))
			for _, p := range content.Parts {
				if p.Text != "" {
					parts = append(parts, p.Text)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "\n\n")
			}
		}
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return resp.Error.Message
	}
	return noCandidatesReply
}
