package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"portfolio/internal/domain"
)

// Row is one labelled line of a quote summary.
type Row struct {
	Label string
	Value string
}

type templateData struct {
	ID        uint
	Name      string
	Email     string
	Subject   string
	Message   string
	Rows      []Row
	Submitted string
}

const layout = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{template "title" .}}</title>
</head>
<body style="margin: 0; padding: 0; background-color: #F8FAFC;">
    <div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee; border-radius: 10px; background-color: #FFFFFF;">
        <h2 style="color: #0ea5e9; border-bottom: 2px solid #0ea5e9; padding-bottom: 10px;">{{template "title" .}}</h2>
        {{template "content" .}}
        <p style="font-size: 12px; color: #64748b; margin-top: 30px; border-top: 1px solid #eee; padding-top: 10px;">
            Message #{{.ID}} received {{.Submitted}}.
        </p>
    </div>
</body>
</html>`

const contactHTML = `{{define "title"}}New Contact Submission{{end}}
{{define "content"}}
        <div style="margin: 20px 0;">
            <p><strong>From:</strong> {{.Name}} (<a href="mailto:{{.Email}}">{{.Email}}</a>)</p>
            <p><strong>Subject:</strong> {{if .Subject}}{{.Subject}}{{else}}N/A{{end}}</p>
            <div style="background: #f8fafc; padding: 15px; border-radius: 8px; margin-top: 10px; line-height: 1.6;">
                <p style="margin: 0; white-space: pre-wrap;">{{.Message}}</p>
            </div>
        </div>
{{end}}`

const quoteHTML = `{{define "title"}}New Project Inquiry{{end}}
{{define "content"}}
        <div style="margin: 20px 0;">
            <p><strong>Client:</strong> {{.Name}} (<a href="mailto:{{.Email}}">{{.Email}}</a>)</p>
            <table style="width: 100%; border-collapse: collapse; margin-top: 20px;">
            {{- range .Rows}}
                <tr>
                    <td style="padding: 8px 0; font-weight: bold; width: 150px; color: #64748b; vertical-align: top;">{{.Label}}</td>
                    <td style="padding: 8px 0; color: #1e293b; white-space: pre-wrap;">{{.Value}}</td>
                </tr>
            {{- end}}
            </table>
        </div>
        <div style="background: #eff6ff; padding: 15px; border-radius: 8px; margin-top: 20px; text-align: center;">
            <p style="margin: 0; font-size: 14px; color: #1e40af;">Check your admin dashboard for more details.</p>
        </div>
{{end}}`

const plainText = `{{if .Rows}}New Project Inquiry

Client: {{.Name}} ({{.Email}})
{{range .Rows}}
{{.Label}}: {{.Value}}{{end}}
{{else}}New Contact Submission

From: {{.Name}} ({{.Email}})
Subject: {{if .Subject}}{{.Subject}}{{else}}N/A{{end}}

{{.Message}}
{{end}}
Message #{{.ID}} received {{.Submitted}}.
`

var (
	contactTmpl = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(contactHTML))
	quoteTmpl   = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(quoteHTML))
	textTmpl    = texttemplate.Must(texttemplate.New("text").Parse(plainText))
)

// Render builds the notification for m. Quote requests get a tabular body built
// from their summary lines; a quote subject over a free-form body is rendered as
// a plain contact message.
func Render(m *domain.Message) (*Email, error) {
	data := templateData{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Submitted: submitted(m.CreatedAt),
	}

	e := &Email{ReplyTo: m.Email}
	tmpl := contactTmpl
	if m.IsQuote() {
		data.Rows = ParseRows(m.Message)
	}
	if len(data.Rows) > 0 {
		tmpl = quoteTmpl
		e.Subject = fmt.Sprintf("[Portfolio] Project Inquiry - %s", m.Name)
	} else {
		subject := m.Subject
		if subject == "" {
			subject = "No Subject"
		}
		e.Subject = fmt.Sprintf("[Portfolio] New Contact Message: %s", subject)
	}

	var html bytes.Buffer
	if err := tmpl.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	var text bytes.Buffer
	if err := textTmpl.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}

	e.HTML = html.String()
	e.Text = text.String()
	return e, nil
}

// userMessageLabel closes a summary: everything after it is free text.
const userMessageLabel = "User Message"

// ParseRows splits a summary into "Label: value" rows. Lines without a colon
// continue the previous row; blank lines are dropped. Once the user message row
// starts, every following line belongs to it.
func ParseRows(summary string) []Row {
	var rows []Row
	inMessage := false
	for line := range strings.SplitSeq(summary, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		label, value, ok := strings.Cut(line, ":")
		if inMessage || !ok || strings.TrimSpace(label) == "" {
			if len(rows) > 0 {
				last := &rows[len(rows)-1]
				if last.Value == "" {
					last.Value = strings.TrimSpace(line)
				} else {
					last.Value += "\n" + strings.TrimSpace(line)
				}
			}
			continue
		}
		label = strings.TrimSpace(label)
		inMessage = label == userMessageLabel
		rows = append(rows, Row{Label: label, Value: strings.TrimSpace(value)})
	}
	return rows
}

func submitted(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format("January 2, 2006 at 3:04 PM MST")
}
