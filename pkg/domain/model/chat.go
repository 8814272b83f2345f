package model

import "github.com/hrops-lab/schedctl/pkg/domain/types"

// ChatMessage is one record of the conversation transcript
type ChatMessage struct {
	Role    types.Role `json:"role"`
	Content string     `json:"content"`
}

// LogRecord is one structured entry from the backend log stream
type LogRecord struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}
