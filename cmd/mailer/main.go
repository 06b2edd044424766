package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/joho/godotenv"
	pkglogger "github.com/menubox/menubox/pkg/logger"
	"gopkg.in/gomail.v2"
)

// sendRequest is the relay wire format. appName is optional; when absent
// the subject falls back to a generic product name.
type sendRequest struct {
	To      string `json:"to"`
	Code    string `json:"code"`
	AppName string `json:"appName"`
}

// codeSender delivers a verification code email to a single recipient.
type codeSender interface {
	Send(ctx context.Context, to, code, appName string) error
}

// smtpSender delivers via an SMTP relay using gomail. Port 465 uses
// implicit TLS; other ports negotiate STARTTLS.
type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func newSMTPSender() (*smtpSender, error) {
	host := os.Getenv("SMTP_HOST")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	if host == "" || user == "" || pass == "" {
		return nil, fmt.Errorf("SMTP_HOST, SMTP_USER and SMTP_PASS are required")
	}

	port := 465
	if p := os.Getenv("SMTP_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", p, err)
		}
		port = parsed
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}

	dialer := gomail.NewDialer(host, port, user, pass)
	dialer.SSL = port == 465

	return &smtpSender{dialer: dialer, from: from}, nil
}

func (s *smtpSender) Send(_ context.Context, to, code, appName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("%s verification code", appName))
	m.SetBody("text/html", codeEmailHTML(code, appName))
	m.AddAlternative("text/plain", codeEmailText(code, appName))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

// sesSender delivers via AWS SES. Selected with MAIL_PROVIDER=ses.
type sesSender struct {
	client *ses.Client
	from   string
}

func newSESSender(ctx context.Context) (*sesSender, error) {
	from := os.Getenv("SES_FROM_ADDRESS")
	if from == "" {
		return nil, fmt.Errorf("SES_FROM_ADDRESS is required")
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &sesSender{client: ses.NewFromConfig(cfg), from: from}, nil
}

func (s *sesSender) Send(ctx context.Context, to, code, appName string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(fmt.Sprintf("%s verification code", appName)),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(codeEmailHTML(code, appName)),
				},
				Text: &types.Content{
					Data: aws.String(codeEmailText(code, appName)),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func codeEmailHTML(code, appName string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
  <h2 style="color: #111;">%s</h2>
  <p>Use this code to verify your email address:</p>
  <p style="font-size: 32px; font-weight: bold; letter-spacing: 8px; text-align: center; padding: 16px; background: #f4f4f5; border-radius: 8px;">%s</p>
  <p>The code expires in 10 minutes.</p>
  <p style="color: #666; font-size: 12px;">If you did not request this code, you can ignore this email.</p>
</div>`, appName, code)
}

func codeEmailText(code, appName string) string {
	return fmt.Sprintf(`%s

Use this code to verify your email address: %s

The code expires in 10 minutes.

If you did not request this code, you can ignore this email.
`, appName, code)
}

type relayHandler struct {
	sender codeSender
	// senderErr holds the startup configuration error, surfaced per
	// request so a misconfigured relay still answers health checks.
	senderErr error
	logger    *slog.Logger
}

func (h *relayHandler) send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeRelayError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRelayError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.To == "" || req.Code == "" {
		writeRelayError(w, http.StatusBadRequest, "to and code are required")
		return
	}

	if req.AppName == "" {
		req.AppName = "Menubox"
	}

	if h.senderErr != nil {
		h.logger.Error("mail relay not configured", slog.Any("error", h.senderErr))
		writeRelayError(w, http.StatusInternalServerError, "mail relay not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if err := h.sender.Send(ctx, req.To, req.Code, req.AppName); err != nil {
		h.logger.Error("failed to deliver verification email",
			slog.String("email", pkglogger.SanitizedEmail(req.To)),
			slog.Any("error", err))
		writeRelayError(w, http.StatusBadGateway, "delivery failed")
		return
	}

	h.logger.Info("verification email delivered",
		slog.String("email", pkglogger.SanitizedEmail(req.To)))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"sent"}`))
}

func writeRelayError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	var (
		sender    codeSender
		senderErr error
	)

	switch provider := os.Getenv("MAIL_PROVIDER"); provider {
	case "ses":
		sender, senderErr = newSESSender(context.Background())
	case "", "smtp":
		sender, senderErr = newSMTPSender()
	default:
		senderErr = fmt.Errorf("unknown MAIL_PROVIDER %q", provider)
	}

	if senderErr != nil {
		logger.Warn("mail sender not configured, /send will return 500", slog.Any("error", senderErr))
	}

	handler := &relayHandler{sender: sender, senderErr: senderErr, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/send", handler.send)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	port := os.Getenv("MAILER_PORT")
	if port == "" {
		port = "8081"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting mail relay", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("mail relay error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("mail relay shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("mail relay stopped gracefully")
}
