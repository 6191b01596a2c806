package email

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"truthtube/internal/models"
	"truthtube/shared/config"
)

//go:embed report.html
var reportTemplate string

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct":     func(f float64) string { return fmt.Sprintf("%.1f", f) },
	"metrics": func() []models.Metric { return models.Metrics },
	"label":   metricLabel,
}).Parse(reportTemplate))

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	config *config.EmailConfig
	send   sendFunc
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
		send:   smtp.SendMail,
	}
}

type reportView struct {
	Name   string
	Report *models.AnalysisReport
}

// SendReport mails the ranked report of the named comparison.
func (s *Sender) SendReport(name string, report *models.AnalysisReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if len(report.Videos) == 0 {
		return nil
	}

	date := report.AnalyzedAt
	if date.IsZero() {
		date = time.Now()
	}
	subject := fmt.Sprintf("Video Ranking - %s: %d videos compared (%s)",
		name, len(report.Videos), date.Format("Jan 2, 2006"))

	body, err := renderReport(name, report)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}
	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := strings.Split(s.config.ToEmail, ",")
	for i := range to {
		to[i] = strings.TrimSpace(to[i])
	}

	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		strings.Join(to, ", "), s.config.FromEmail, subject, htmlBody))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	if err := s.send(addr, auth, s.config.FromEmail, to, msg); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", addr, err)
	}
	return nil
}

func renderReport(name string, report *models.AnalysisReport) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, reportView{Name: name, Report: report}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func metricLabel(m models.Metric) string {
	switch m {
	case models.MetricDensity:
		return "Density"
	case models.MetricRedundancy:
		return "Redundancy"
	case models.MetricTitleRelevance:
		return "Title relevance"
	case models.MetricOriginality:
		return "Originality"
	}
	return string(m)
}
