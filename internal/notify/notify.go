package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	"constructedge/internal/config"
	"constructedge/pkg/logger"

	"go.uber.org/zap"
)

// Notifier delivers one-time passcodes to their owner.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string, validFor time.Duration) error
}

const otpSubject = "ConstructEdge - OTP Verification"

func otpBody(code string, validFor time.Duration) string {
	return fmt.Sprintf("Your OTP is: %s\nValid for %d minutes.", code, int(validFor.Minutes()))
}

// New picks SMTP when a host is configured, then Resend, then the log sink.
func New(cfg config.MailConfig) Notifier {
	switch {
	case cfg.SMTPHost != "":
		return &SMTPNotifier{cfg: cfg}
	case cfg.ResendAPIKey != "":
		return &ResendNotifier{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}, endpoint: "https://api.resend.com/emails"}
	default:
		return LogNotifier{}
	}
}

type SMTPNotifier struct {
	cfg config.MailConfig
}

func (n *SMTPNotifier) SendOTP(_ context.Context, email, code string, validFor time.Duration) error {
	addr := n.cfg.SMTPHost + ":" + n.cfg.SMTPPort

	msg := "From: " + n.cfg.From + "\r\n" +
		"To: " + email + "\r\n" +
		"Subject: " + otpSubject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		otpBody(code, validFor)

	var auth smtp.Auth
	if n.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPass, n.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type ResendNotifier struct {
	cfg      config.MailConfig
	client   *http.Client
	endpoint string
}

func (n *ResendNotifier) SendOTP(ctx context.Context, email, code string, validFor time.Duration) error {
	body, err := json.Marshal(resendRequest{
		From:    n.cfg.From,
		To:      []string{email},
		Subject: otpSubject,
		Text:    otpBody(code, validFor),
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.cfg.ResendAPIKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API error: status %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier writes the code to the log. Development only.
type LogNotifier struct{}

func (LogNotifier) SendOTP(_ context.Context, email, code string, validFor time.Duration) error {
	logger.Logger.Info("OTP issued", zap.String("email", email), zap.String("code", code), zap.Duration("valid_for", validFor))
	return nil
}
