// Package mail delivers OTP emails over SMTP.
package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/mail"
	"net/url"
	"time"

	"github.com/Thecaracter/be-berita/internal/config"
	"github.com/Thecaracter/be-berita/internal/models"

	"github.com/dajohi/goemail"
	"go.uber.org/zap"
)

// Mailer sends an OTP code to a recipient. Handlers depend on this interface
// so tests can capture sends.
type Mailer interface {
	SendOTP(to, name, code, purpose string) error
}

// Client is an SMTP Mailer. When the SMTP credentials are missing the client
// is disabled: sends succeed silently and the code is logged at debug level,
// which keeps local development workable without a mail server.
type Client struct {
	smtp        *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool
	log         *zap.Logger
}

// NewClient builds the SMTP client from config.
func NewClient(cfg config.MailConfig, log *zap.Logger) (*Client, error) {
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		log.Info("mail: disabled, missing smtp credentials")
		return &Client{disabled: true, log: log}, nil
	}

	h := fmt.Sprintf("smtps://%v:%v@%v", cfg.Username, cfg.Password, cfg.Host)
	u, err := url.Parse(h)
	if err != nil {
		return nil, fmt.Errorf("parse mail host: %w", err)
	}

	a, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("parse mail from: %w", err)
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.SkipVerify,
	}

	smtp, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	log.Info("mail: enabled", zap.String("host", cfg.Host), zap.String("from", a.Address))
	return &Client{
		smtp:        smtp,
		mailName:    a.Name,
		mailAddress: a.Address,
		log:         log,
	}, nil
}

var otpTmpl = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8" /></head>
<body style="font-family:Arial,sans-serif;background:#f4f4f4;margin:0;padding:0;">
  <div style="max-width:480px;margin:40px auto;background:#fff;border-radius:12px;overflow:hidden;">
    <div style="background:#1a1a2e;padding:32px 40px;text-align:center;">
      <h1 style="color:#e94560;margin:0;">YB News</h1>
      <span style="color:#fff;font-size:14px;opacity:0.7;">Your daily news source</span>
    </div>
    <div style="padding:40px;">
      <p>Hi <strong>{{.Name}}</strong>,</p>
      <p>Use the code below to <strong>{{.Action}}</strong>:</p>
      <div style="border:2px dashed #e94560;border-radius:10px;padding:20px;text-align:center;margin:24px 0;">
        <div style="font-family:monospace;font-size:36px;font-weight:bold;letter-spacing:8px;">{{.Code}}</div>
        <div style="font-size:13px;color:#888;margin-top:8px;">This code expires in <strong>3 minutes</strong></div>
      </div>
      <p>If you did not request this, please ignore this email. Your account is safe.</p>
    </div>
    <div style="background:#f8f9fa;padding:20px 40px;text-align:center;">
      <p style="color:#aaa;font-size:12px;margin:0;">&copy; {{.Year}} YB News. All rights reserved.</p>
    </div>
  </div>
</body>
</html>`))

// SendOTP emails code to the recipient with wording matched to the purpose.
func (c *Client) SendOTP(to, name, code, purpose string) error {
	subject := "Your YB News OTP Code"
	action := "complete your login"
	if purpose == models.OTPPurposeResetPassword {
		subject = "Reset Your YB News Password"
		action = "reset your password"
	}

	if c.disabled {
		c.log.Debug("mail disabled, dropping otp email",
			zap.String("to", to), zap.String("purpose", purpose))
		return nil
	}

	var body bytes.Buffer
	err := otpTmpl.Execute(&body, map[string]interface{}{
		"Name":   name,
		"Action": action,
		"Code":   code,
		"Year":   time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("render otp email: %w", err)
	}

	msg := goemail.NewHTMLMessage(c.mailAddress, subject, body.String())
	if c.mailName != "" {
		msg.SetName(c.mailName)
	}
	msg.AddTo(to)

	if err := c.smtp.Send(msg); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}
