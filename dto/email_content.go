package dto

// EmailContent is a generated outbound message.
type EmailContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// OutboundMail is a one-shot transport request. Password is the decrypted
// credential; it lives only for the duration of the call.
type OutboundMail struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Subject  string
	Body     string
	Headers  map[string]string
}
