package model

type ChatRequest struct {
	Query string `json:"query" validate:"notblank"`
}

// ChatResponse is the reply to a free-text query. Data carries the records
// a recognised intent looked up.
type ChatResponse struct {
	Response string      `json:"response"`
	Data     interface{} `json:"data,omitempty"`
}
