package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"constructedge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPicksBackend(t *testing.T) {
	assert.IsType(t, &SMTPNotifier{}, New(config.MailConfig{SMTPHost: "smtp.local", ResendAPIKey: "k"}))
	assert.IsType(t, &ResendNotifier{}, New(config.MailConfig{ResendAPIKey: "k"}))
	assert.IsType(t, LogNotifier{}, New(config.MailConfig{}))
}

func TestOtpBody(t *testing.T) {
	assert.Equal(t, "Your OTP is: 123456\nValid for 5 minutes.", otpBody("123456", 5*time.Minute))
}

func TestResendNotifier(t *testing.T) {
	var got resendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got.To[0] == "bounce@x.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := &ResendNotifier{
		cfg:      config.MailConfig{From: "ops@constructedge.local", ResendAPIKey: "re_test"},
		client:   srv.Client(),
		endpoint: srv.URL,
	}

	require.NoError(t, n.SendOTP(context.Background(), "u@x.com", "654321", 5*time.Minute))
	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, []string{"u@x.com"}, got.To)
	assert.Equal(t, "ops@constructedge.local", got.From)
	assert.Equal(t, otpSubject, got.Subject)
	assert.Contains(t, got.Text, "654321")

	err := n.SendOTP(context.Background(), "bounce@x.com", "654321", 5*time.Minute)
	assert.ErrorContains(t, err, "422")
}

func TestResendNotifierUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	n := &ResendNotifier{client: srv.Client(), endpoint: url}
	assert.Error(t, n.SendOTP(context.Background(), "u@x.com", "1", time.Minute))
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, LogNotifier{}.SendOTP(context.Background(), "u@x.com", "111111", time.Minute))
}
