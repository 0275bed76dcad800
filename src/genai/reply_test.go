package genai

import "testing"

func TestReplyText(t *testing.T) {
	tests := []struct {
		name string
		resp *GenerateContentResponse
		want string
	}{
		{
			name: "nil response",
			resp: nil,
			want: "No candidates returned",
		},
		{
			name: "no candidates",
			resp: &GenerateContentResponse{},
			want: "No candidates returned",
		},
		{
			name: "single part",
			resp: &GenerateContentResponse{
				Candidates: []Candidate{{Content: &Content{Parts: []Part{{Text: "answer"}}}}},
			},
			want: "answer",
		},
		{
			name: "multiple parts joined with blank line",
			resp: &GenerateContentResponse{
				Candidates: []Candidate{{Content: &Content{Parts: []Part{{Text: "one"}, {Text: "two"}}}}},
			},
			want: "one\n\ntwo",
		},
		{
			name: "empty parts are skipped",
			resp: &GenerateContentResponse{
				Candidates: []Candidate{{Content: &Content{Parts: []Part{{Text: ""}, {Text: "kept"}}}}},
			},
			want: "kept",
		},
		{
			name: "candidate without content falls through to error message",
			resp: &GenerateContentResponse{
				Candidates: []Candidate{{FinishReason: "SAFETY"}},
				Error:      &ErrorDetail{Message: "blocked by safety settings"},
			},
			want: "blocked by safety settings",
		},
		{
			name: "error payload on 2xx",
			resp: &GenerateContentResponse{
				Error: &ErrorDetail{Code: 400, Message: "invalid argument"},
			},
			want: "invalid argument",
		},
		{
			name: "all parts empty",
			resp: &GenerateContentResponse{
				Candidates: []Candidate{{Content: &Content{Parts: []Part{{Text: ""}}}}},
			},
			want: "No candidates returned",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplyText(tt.resp); got != tt.want {
				t.Errorf("ReplyText() = %q, want %q", got, tt.want)
			}
		})
	}
}
