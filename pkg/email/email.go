package email

import (
	"bytes"
	"fmt"
	"hospital-recruitment-backend/config"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
)

// EmailService sends HR notifications over SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	hrEmail   string
	sendMail  func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// SubmissionEmailData holds the data for new-submission notifications
type SubmissionEmailData struct {
	FormName    string // Thai display name of the intake form
	RecordID    string
	FullName    string
	Position    string
	Department  string
	ApplicantTo string // applicant email, used as Reply-To
	ReviewURL   string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		hrEmail:   cfg.HRNotifyEmail,
		sendMail:  smtp.SendMail,
	}
}

var submissionTemplate = template.Must(template.New("submission").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.FormName}}</title>
    <style>
        body { font-family: Sarabun, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #00796b; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .label { font-weight: bold; color: #555; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>มีผู้สมัครใหม่: {{.FormName}}</h1></div>
        <div class="content">
            <p><span class="label">ชื่อ-นามสกุล:</span> {{.FullName}}</p>
            <p><span class="label">ตำแหน่ง:</span> {{.Position}}</p>
            {{if .Department}}<p><span class="label">หน่วยงาน:</span> {{.Department}}</p>{{end}}
            <p><span class="label">เลขที่เอกสาร:</span> {{.RecordID}}</p>
            {{if .ReviewURL}}<p><a href="{{.ReviewURL}}">เปิดเพื่อพิจารณา</a></p>{{end}}
        </div>
    </div>
</body>
</html>`))

// SendSubmissionNotice emails HR and the given department admins about a new submission.
func (s *EmailService) SendSubmissionNotice(recipients []string, data SubmissionEmailData) error {
	to := s.recipients(recipients)
	if len(to) == 0 {
		return nil
	}

	var body bytes.Buffer
	if err := submissionTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	subject := mime.BEncoding.Encode("UTF-8", fmt.Sprintf("%s: %s", data.FormName, data.FullName))

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\n", s.fromEmail, strings.Join(to, ", "))
	if data.ApplicantTo != "" {
		headers += fmt.Sprintf("Reply-To: %s\r\n", data.ApplicantTo)
	}
	msg := []byte(headers +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		body.String())

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.sendMail(addr, auth, s.fromEmail, to, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// recipients adds the HR inbox and drops blanks and duplicates.
func (s *EmailService) recipients(extra []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, addr := range append([]string{s.hrEmail}, extra...) {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, addr)
	}
	return out
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
