package httpdto

type StartSessionRequest struct {
	SessionName string `json:"session_name"`
}

type SessionStateResponse struct {
	SessionName string `json:"session_name"`
	Status      string `json:"status"`
	QRCode      string `json:"qr_code,omitempty"`
}

type BridgeSendRequest struct {
	SessionName string `json:"session_name"`
	Phone       string `json:"phone"`
	Body        string `json:"body"`
}
