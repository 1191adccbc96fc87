package httpdto

// SendMessageRequest creates a message. TicketID may be empty for the first
// client message; the store then opens a ticket before appending.
// ClientMessageID is the UI-generated correlation id used to reconcile the
// optimistic placeholder with the persisted message.
type SendMessageRequest struct {
	TicketID        string `json:"ticket_id"`
	FromType        string `json:"from_type"`
	FromID          string `json:"from_id"`
	ToType          string `json:"to_type"`
	ToID            string `json:"to_id"`
	Kind            string `json:"kind"`
	Body            string `json:"body"`
	FileURL         string `json:"file_url"`
	Origin          string `json:"origin"`
	ClientMessageID string `json:"client_message_id"`
}

type MarkReadRequest struct {
	ViewerType string `json:"viewer_type"`
}
