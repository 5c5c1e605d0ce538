package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"

	"weather-app/internal/models"
	"weather-app/shared/config"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	config   *config.EmailConfig
	sendMail sendFunc
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config:   cfg,
		sendMail: smtp.SendMail,
	}
}

// SendDigest emails a daily forecast digest
func (s *Sender) SendDigest(digest *models.ForecastDigest) error {
	if digest == nil || digest.View == nil {
		return fmt.Errorf("digest cannot be nil")
	}

	subject := DigestSubject(digest)

	body, err := generateDigestBody(digest)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// DigestSubject returns the subject line of a digest email
func DigestSubject(digest *models.ForecastDigest) string {
	return fmt.Sprintf("🌤️ Weather Forecast for %s - %s", digest.View.Label, digest.Date.Format("Jan 2, 2006"))
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf(`To: %s
From: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, s.config.ToEmail, s.config.FromEmail, subject, htmlBody))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	if err := s.sendMail(addr, auth, s.config.FromEmail, to, msg); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", addr, err)
	}
	return nil
}

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"temp": formatTemperature,
}).Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Weather Forecast</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
        .header { background-color: #2196F3; color: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; text-align: center; }
        .narrative { background-color: #E8F5E8; padding: 15px; border-radius: 8px; margin-bottom: 20px; border-left: 4px solid #4CAF50; }
        .section { background-color: #f8f9fa; padding: 15px; border-radius: 8px; margin-bottom: 20px; }
        .metric { display: inline-block; margin: 10px 15px 10px 0; }
        .metric-label { font-weight: bold; color: #666; }
        .metric-value { font-size: 18px; color: #2196F3; }
        .notice { color: #FF9800; }
        table { border-collapse: collapse; width: 100%; }
        td, th { padding: 4px 8px; border-bottom: 1px solid #ddd; text-align: left; }
        .footer { text-align: center; color: #666; font-size: 12px; margin-top: 30px; border-top: 1px solid #ddd; padding-top: 15px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>🌤️ Weather Forecast</h1>
        <h2>{{.View.Label}}</h2>
        <p>{{.Date.Format "Monday, January 2, 2006"}}</p>
    </div>

    {{if .Narrative}}
    <div class="narrative">
        <p>{{.Narrative}}</p>
    </div>
    {{end}}

    {{with .View.Current}}
    <div class="section">
        <h3>Current Weather</h3>
        <div class="metric"><div class="metric-label">Temperature</div><div class="metric-value">{{.Temperature}}</div></div>
        <div class="metric"><div class="metric-label">Wind Speed</div><div class="metric-value">{{.Wind}}</div></div>
        <div class="metric"><div class="metric-label">Weather Code</div><div class="metric-value">{{.Condition}}</div></div>
        <p><strong>Time:</strong> {{.Time}}</p>
    </div>
    {{end}}

    {{if .View.Daily}}
    <div class="section">
        <h3>Daily Forecast</h3>
        <ul>
        {{range .View.Daily}}
            <li>{{.Text}}</li>
        {{end}}
        </ul>
    </div>
    {{end}}

    {{with .View.Hourly}}
    <div class="section">
        <h3>Next {{len .Times}} Hours</h3>
        <table>
            <tr><th>Time</th><th>Temperature</th></tr>
            {{range $i, $label := .Labels}}
            <tr><td>{{$label}}</td><td>{{temp (index $.View.Hourly.Temperatures $i) $.View.Units}}</td></tr>
            {{end}}
        </table>
    </div>
    {{end}}

    {{range .View.Notices}}
    <p class="notice">{{.}}</p>
    {{end}}

    <div class="footer">
        <p>Weather data from Open-Meteo • {{.View.Timezone}}</p>
    </div>
</body>
</html>
`))

func formatTemperature(v *float64, units models.UnitSystem) string {
	if v == nil {
		return "—"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + units.TemperatureLabel()
}

func generateDigestBody(digest *models.ForecastDigest) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, digest); err != nil {
		return "", err
	}
	return buf.String(), nil
}
