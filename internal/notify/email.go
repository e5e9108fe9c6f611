package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"PulseWatch/internal/domain/models"
)

// EmailConfig holds SMTP settings.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Email delivers signals as HTML mail over SMTP with PLAIN auth.
type Email struct {
	cfg  EmailConfig
	tmpl *template.Template
}

var emailTemplate = template.Must(template.New("signal").Parse(`<html><body>
<h2>{{.Symbol}} {{.Type}} {{.Direction}}</h2>
<p>Confidence: <b>{{.Confidence.Score}}</b> ({{.Confidence.Level}})</p>
<p>Price: {{printf "%.8g" .Price}}</p>
<table border="0" cellpadding="4">
<tr><td>Entry</td><td>{{printf "%.8g" .Levels.Entry}}</td></tr>
<tr><td>TP1</td><td>{{printf "%.8g" .Levels.TP1}}</td></tr>
<tr><td>TP2</td><td>{{printf "%.8g" .Levels.TP2}}</td></tr>
<tr><td>TP3</td><td>{{printf "%.8g" .Levels.TP3}}</td></tr>
<tr><td>Stop</td><td>{{printf "%.8g" .Levels.StopLoss}}</td></tr>
<tr><td>R/R</td><td>{{.Levels.RiskReward}}</td></tr>
</table>
<ul>{{range .Confidence.Factors}}<li>{{.}}</li>{{end}}</ul>
</body></html>`))

// NewEmail creates an email notifier.
func NewEmail(cfg EmailConfig) *Email {
	return &Email{cfg: cfg, tmpl: emailTemplate}
}

func (e *Email) Notify(ctx context.Context, s *models.Signal) error {
	var body bytes.Buffer
	if err := e.tmpl.Execute(&body, s); err != nil {
		return fmt.Errorf("email render: %w", err)
	}

	subject := fmt.Sprintf("[PulseWatch] %s %s %s (%d)", s.Symbol, s.Type, s.Direction, s.Confidence.Score)

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", e.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(e.cfg.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	if err := smtp.SendMail(addr, auth, e.cfg.From, e.cfg.To, msg.Bytes()); err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	return nil
}

func (e *Email) Close() error { return nil }
