package compose

import (
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/mailagent/internal/apierr"
	"github.com/nhle/mailagent/internal/backend"
	"github.com/nhle/mailagent/internal/ui/reader"
)

// ValidateRecipients checks a comma-separated recipient list.
func ValidateRecipients(to string) error {
	if strings.TrimSpace(to) == "" {
		return apierr.Validation("Recipient is required")
	}
	addrs, err := mail.ParseAddressList(to)
	if err != nil {
		return apierr.Validation("Invalid recipient address: "+err.Error()).WithCause(err)
	}
	if len(addrs) == 0 {
		return apierr.Validation("Recipient is required")
	}
	return nil
}

// ValidateDraft checks a draft before it is sent.
func ValidateDraft(d backend.Draft) *apierr.Error {
	if err := ValidateRecipients(d.To); err != nil {
		apiErr, _ := err.(*apierr.Error)
		return apiErr
	}
	if strings.TrimSpace(d.Subject) == "" && strings.TrimSpace(d.Body) == "" {
		return apierr.Validation("Subject or body is required")
	}
	return nil
}

// SignatureBlock formats a signature with the standard "-- " separator,
// or returns "" for an empty signature.
func SignatureBlock(signature string) string {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ""
	}
	return "\n\n-- \n" + signature
}

// ReplySubject prefixes subject with "Re: " unless it already has it.
func ReplySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// ReplyDraft builds a reply to e. The body holds the cleaned suggestion,
// the signature, and the quoted original.
func ReplyDraft(e backend.EmailDetails, suggestion, signature string) backend.Draft {
	var b strings.Builder
	if s := reader.CleanSuggestion(suggestion); s != "" {
		b.WriteString(s)
	}
	b.WriteString(SignatureBlock(signature))

	b.WriteString("\n\n---\nOn ")
	if date, ok := e.Metadata["date"].(string); ok && date != "" {
		b.WriteString(date)
	} else {
		b.WriteString("an earlier date")
	}
	b.WriteString(", ")
	b.WriteString(e.From)
	b.WriteString(" wrote:\n\n")
	for _, line := range strings.Split(reader.PlainBody(e), "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	return backend.Draft{
		To:      e.From,
		Subject: ReplySubject(e.Subject),
		Body:    b.String(),
		ReplyTo: e.ID,
	}
}
