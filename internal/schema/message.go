package schema

// Message is one entry of a completion request.
//
// Role is "user" for the prompt turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}
