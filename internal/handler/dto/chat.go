package dto

// ChatRequest represents a message sent to the fishing assistant.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant's reply verbatim.
type ChatResponse struct {
	Response string `json:"response"`
}
