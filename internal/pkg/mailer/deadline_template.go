package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type DeadlineItem struct {
	Title    string
	Priority string
	Deadline time.Time
	Overdue  bool
}

type DeadlineDigest struct {
	RecipientName string
	Items         []DeadlineItem
	GeneratedAt   time.Time
	Test          bool
}

func (d DeadlineDigest) OverdueCount() int {
	n := 0
	for _, item := range d.Items {
		if item.Overdue {
			n++
		}
	}
	return n
}

func (d DeadlineDigest) UpcomingCount() int {
	return len(d.Items) - d.OverdueCount()
}

var deadlineDigestTemplate = template.Must(template.New("deadline_digest").Funcs(template.FuncMap{
	"formatTime": func(t time.Time) string { return t.UTC().Format("Mon, 02 Jan 2006 15:04 MST") },
}).Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
	<h2>Note deadlines{{if .Test}} (test){{end}}</h2>
	<p>Hi {{.RecipientName}},</p>
	<p>You have {{.OverdueCount}} overdue and {{.UpcomingCount}} upcoming notes.</p>
	<table style="border-collapse: collapse; width: 100%;">
		<tr>
			<th style="text-align: left; padding: 6px;">Note</th>
			<th style="text-align: left; padding: 6px;">Priority</th>
			<th style="text-align: left; padding: 6px;">Deadline</th>
		</tr>
		{{range .Items}}
		<tr{{if .Overdue}} style="background-color: #fee2e2;"{{end}}>
			<td style="padding: 6px;">{{.Title}}{{if .Overdue}} <strong style="color: #dc2626;">OVERDUE</strong>{{end}}</td>
			<td style="padding: 6px;">{{.Priority}}</td>
			<td style="padding: 6px;">{{formatTime .Deadline}}</td>
		</tr>
		{{end}}
	</table>
	<p style="color: #6b7280; font-size: 12px;">Generated {{formatTime .GeneratedAt}}. You can turn these reminders off in your notification settings.</p>
</div>`))

// RenderDeadlineDigest returns the subject and HTML body for one user's reminder email.
func RenderDeadlineDigest(digest DeadlineDigest) (string, string, error) {
	var buf bytes.Buffer
	if err := deadlineDigestTemplate.Execute(&buf, digest); err != nil {
		return "", "", fmt.Errorf("render deadline digest: %w", err)
	}

	subject := fmt.Sprintf("%d notes need your attention", len(digest.Items))
	if overdue := digest.OverdueCount(); overdue > 0 {
		subject = fmt.Sprintf("%d overdue, %d upcoming note deadlines", overdue, digest.UpcomingCount())
	}
	if digest.Test {
		subject = "[Test] " + subject
	}
	return subject, buf.String(), nil
}
