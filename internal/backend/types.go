package backend

import "slices"

// AuthStatus is the body of GET /auth/status.
type AuthStatus struct {
	Authenticated bool `json:"authenticated"`
}

// LoginResponse is the body of POST /auth/login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Status is the body of GET /status.
type Status struct {
	GmailAuthenticated   bool   `json:"gmail_authenticated"`
	LocalAIServiceStatus string `json:"local_ai_service_status"`
}

// EmailMetadata is one row of GET /emails.
type EmailMetadata struct {
	ID       string   `json:"id"`
	Subject  string   `json:"subject"`
	From     string   `json:"from"`
	Date     string   `json:"date"`
	LabelIDs []string `json:"labelIds"`
}

// IsUnread reports whether the message carries the UNREAD label.
func (m EmailMetadata) IsUnread() bool {
	return slices.Contains(m.LabelIDs, LabelUnread)
}

// EmailDetails is the body of GET /emails/{id}.
type EmailDetails struct {
	ID            string         `json:"id"`
	ThreadID      string         `json:"thread_id"`
	Subject       string         `json:"subject"`
	From          string         `json:"from"`
	Recipients    []string       `json:"recipients"`
	PlainContent  string         `json:"plain_content"`
	HTMLContent   string         `json:"html_content"`
	Body          string         `json:"body"`
	IsHTML        bool           `json:"is_html"`
	AttachmentIDs []string       `json:"attachmentIds"`
	Labels        []string       `json:"labels"`
	Metadata      map[string]any `json:"metadata"`
}

// Draft is an outgoing message for POST /emails/send.
type Draft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	ReplyTo string `json:"reply_to,omitempty"`
}

// ActionResponse is returned by archive, delete, send and modify.
type ActionResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"message_id,omitempty"`
}

// ConfigData mirrors the backend's INI-backed settings.
type ConfigData struct {
	Ollama OllamaConfig `json:"Ollama"`
	App    AppSettings  `json:"App"`
	User   UserSettings `json:"User"`
}

type OllamaConfig struct {
	APIBaseURL string `json:"api_base_url"`
	ModelName  string `json:"model_name"`
}

type AppSettings struct {
	MaxEmailsFetch int `json:"max_emails_fetch"`
}

type UserSettings struct {
	Signature string `json:"signature"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type signatureBody struct {
	Signature string `json:"signature"`
}

type statusBody struct {
	Status string `json:"status"`
}

type saveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type threadResponse struct {
	MessageIDs []string `json:"messageIds"`
}

type modifyBody struct {
	AddLabelIDs    []string `json:"addLabelIds,omitempty"`
	RemoveLabelIDs []string `json:"removeLabelIds,omitempty"`
}
