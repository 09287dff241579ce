package contact

import (
	"fmt"
	"strings"

	"github.com/shineum/contact-relay/internal/email"
)

// Envelope is the server-held part of every outbound message.
type Envelope struct {
	From    string
	To      []string
	Subject string
}

const bodyTemplate = `<h3>New message from your website</h3>
<p><strong>From:</strong> %s</p>
<p><strong>Message:</strong></p>
<p>%s</p>
`

var (
	angleEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")
	lineBreaker  = strings.NewReplacer("\r\n", "<br>", "\n", "<br>")
)

// EscapeMarkup replaces '<' and '>' with their HTML entities.
func EscapeMarkup(s string) string {
	return angleEscaper.Replace(s)
}

// RenderBody builds the HTML body. Both values are escaped first; line
// breaks in the message are converted after escaping.
func RenderBody(replyTo, message string) string {
	return fmt.Sprintf(bodyTemplate, EscapeMarkup(replyTo), lineBreaker.Replace(EscapeMarkup(message)))
}

// Compose builds the outbound email for a validated submission. It
// re-validates so an Email is never built from an unchecked reply_to.
func Compose(env Envelope, sub *Submission) (*email.Email, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	to := make([]string, len(env.To))
	copy(to, env.To)

	return &email.Email{
		From:     env.From,
		To:       to,
		Subject:  env.Subject,
		HTMLBody: RenderBody(sub.ReplyTo, sub.Message),
		ReplyTo:  sub.ReplyTo,
	}, nil
}
