package httpdto

type AssignTicketRequest struct {
	AgentID string `json:"agent_id"`
}

// SetStatusRequest bundles a final message with a status transition
// (send-and-continue / send-and-wait / send-and-finish). When Message is
// present both the append and the transition succeed or fail together.
type SetStatusRequest struct {
	Status  string              `json:"status"`
	Message *SendMessageRequest `json:"message,omitempty"`
}

// ToggleAIRequest sets the ticket-level AI override. Mode is one of
// "enabled", "disabled", "inherit"; DisabledUntil optionally expires a
// disabled override (RFC3339).
type ToggleAIRequest struct {
	Mode          string `json:"mode"`
	DisabledUntil string `json:"disabled_until,omitempty"`
}
