package notify

import (
	"fmt"
	"strings"

	"leadgate/internal/lead/models"
)

// DefaultTitle heads every lead notification.
const DefaultTitle = "New lead"

const notSpecified = "Not specified"

// Legacy Markdown honours a backslash only before these four characters.
var markdownEscaper = strings.NewReplacer(
	`_`, `\_`,
	`*`, `\*`,
	"`", "\\`",
	`[`, `\[`,
)

// EscapeMarkdown escapes the characters Telegram's legacy Markdown mode
// treats as entity delimiters.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatMessage renders the lead notification text. User-supplied values are
// escaped; the labels are Markdown bold.
func FormatMessage(title string, rec *models.Record) string {
	if title == "" {
		title = DefaultTitle
	}
	email, phone := notSpecified, notSpecified
	if rec.Email != nil {
		email = *rec.Email
	}
	if rec.Phone != nil {
		phone = *rec.Phone
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚀 *%s*\n\n", EscapeMarkdown(title))
	fmt.Fprintf(&b, "👤 *Name:* %s\n", EscapeMarkdown(rec.Name))
	fmt.Fprintf(&b, "🏢 *Company:* %s\n", EscapeMarkdown(rec.Company))
	fmt.Fprintf(&b, "📧 *Email:* %s\n", EscapeMarkdown(email))
	fmt.Fprintf(&b, "📞 *Phone:* %s\n", EscapeMarkdown(phone))
	fmt.Fprintf(&b, "👥 *Team size:* %d\n", rec.TeamSize)
	fmt.Fprintf(&b, "🌐 *IP:* %s\n", EscapeMarkdown(rec.IPAddress))
	return b.String()
}
