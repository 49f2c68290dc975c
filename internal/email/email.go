// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
}

// NewService creates a new email service
func NewService(config *Config) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

func (s *Service) loadTemplates() {

	// Approval Receipt Template
	s.templates["approval_receipt"] = template.Must(template.New("approval_receipt").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #10b981 0%, #059669 100%); color: white; padding: 30px; border-radius: 10px 10px 0 0; }
        .content { background: #f9fafb; padding: 30px; border-radius: 0 0 10px 10px; }
        .receipt-card { background: white; border-radius: 8px; padding: 20px; margin: 20px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .footer { text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>✅ Proof Approved</h1>
        </div>
        <div class="content">
            <p>Hi {{.ApproverName}},</p>
            <p>This confirms your digital approval of the proof for <strong>{{.ProjectName}}</strong>.</p>

            <div class="receipt-card">
                <p><strong>Project:</strong> {{.ProjectName}}</p>
                <p><strong>Approved by:</strong> {{.ApproverName}}</p>
            </div>

            <p style="margin-top: 16px; font-size: 14px; color: #6b7280;">
                Keep this email as a record of your sign-off.
            </p>
        </div>
        <div class="footer">
            <p>This email was sent from Inkline Studio</p>
        </div>
    </div>
</body>
</html>
`))

	// Phase Advanced Template
	s.templates["phase_advanced"] = template.Must(template.New("phase_advanced").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #6366f1 0%, #4f46e5 100%); color: white; padding: 30px; border-radius: 10px 10px 0 0; }
        .content { background: #f9fafb; padding: 30px; border-radius: 0 0 10px 10px; }
        .phase-card { background: white; border-radius: 8px; padding: 20px; margin: 20px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .footer { text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🚀 Your Project Moved Forward</h1>
        </div>
        <div class="content">
            <p>Hi {{.ContactName}},</p>
            <p>Great news! <strong>{{.ProjectName}}</strong> has completed the <strong>{{.FromPhase}}</strong> phase.</p>

            <div class="phase-card">
                <p><strong>Now in:</strong> {{.ToPhase}}</p>
            </div>

            <p>We'll let you know as soon as anything needs your attention.</p>
        </div>
        <div class="footer">
            <p>This email was sent from Inkline Studio</p>
        </div>
    </div>
</body>
</html>
`))
}

// Send sends an email
func (s *Service) Send(email *Email) error {
	if s.config.Host == "" {
		log.Println("Email not configured, skipping send")
		return nil
	}

	var msg bytes.Buffer

	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.Body)
	}

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("TLS dial error: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			return fmt.Errorf("SMTP client error: %w", err)
		}
		defer client.Close()

		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("auth error: %w", err)
		}

		if err = client.Mail(s.config.From); err != nil {
			return fmt.Errorf("mail error: %w", err)
		}

		for _, rcpt := range email.To {
			if err = client.Rcpt(rcpt); err != nil {
				return fmt.Errorf("rcpt error: %w", err)
			}
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("data error: %w", err)
		}

		if _, err = w.Write(msg.Bytes()); err != nil {
			return fmt.Errorf("write error: %w", err)
		}

		if err = w.Close(); err != nil {
			return fmt.Errorf("close error: %w", err)
		}

		return client.Quit()
	}

	return smtp.SendMail(addr, auth, s.config.From, email.To, msg.Bytes())
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	return s.Send(&Email{
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
	})
}

// ============================================
// Convenience Methods
// ============================================

// ApprovalReceiptData holds data for the approval receipt email
type ApprovalReceiptData struct {
	ApproverName string
	ProjectName  string
}

// SendApprovalReceipt sends the approver a record of their sign-off
func (s *Service) SendApprovalReceipt(to, approverName, projectName string) error {
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("[Inkline] Proof approved: %s", projectName),
		"approval_receipt",
		ApprovalReceiptData{ApproverName: approverName, ProjectName: projectName},
	)
}

// PhaseAdvancedData holds data for the phase advanced email
type PhaseAdvancedData struct {
	ContactName string
	ProjectName string
	FromPhase   string
	ToPhase     string
}

// SendPhaseAdvanced tells the client their project entered a new phase
func (s *Service) SendPhaseAdvanced(to, contactName, projectName, fromPhase, toPhase string) error {
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("[Inkline] %s entered %s", projectName, toPhase),
		"phase_advanced",
		PhaseAdvancedData{
			ContactName: contactName,
			ProjectName: projectName,
			FromPhase:   fromPhase,
			ToPhase:     toPhase,
		},
	)
}
