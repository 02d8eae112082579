// Package report emails suspicious verification reports to administrators.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	dErrors "vouch/pkg/domain-errors"
	"vouch/internal/verification/models"
	"vouch/pkg/requestcontext"
)

const messageBody = `The following suspicious verification interaction has been reported:

Report date: %s UTC
Reported by (uid): %s
Suspicious verification:
%s

*** Start Report ***
%s
*** End Report ***


Please investigate and take appropriate action.
`

// VerificationFinder resolves a verification id to its record for inclusion
// in the report.
type VerificationFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Record, error)
}

// Config holds the report mail settings.
type Config struct {
	// SMTPAddr is the mail server address in host:port form.
	SMTPAddr string
	// From is the envelope and header sender address.
	From string
	// To lists the administrator recipient addresses.
	To []string
	// Subject is the mail subject line.
	Subject string
}

// SendFunc submits a composed message to the mail server. It matches the
// signature of smtp.SendMail without authentication.
type SendFunc func(addr, from string, to []string, msg []byte) error

// Service composes and sends suspicious verification reports.
type Service struct {
	verifications VerificationFinder
	cfg           Config
	logger        *slog.Logger
	send          SendFunc
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithSendFunc replaces the mail submission function.
func WithSendFunc(send SendFunc) Option {
	return func(s *Service) { s.send = send }
}

// New constructs the report service.
func New(verifications VerificationFinder, cfg Config, opts ...Option) (*Service, error) {
	if verifications == nil {
		return nil, errors.New("verification finder is required")
	}
	if cfg.SMTPAddr == "" || cfg.From == "" || len(cfg.To) == 0 {
		return nil, errors.New("report mail settings are incomplete")
	}
	svc := &Service{
		verifications: verifications,
		cfg:           cfg,
		logger:        slog.Default(),
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Email sends a report of a suspicious verification interaction to the
// configured administrators. The referenced verification is included when it
// still resolves; reports against unknown ids are sent anyway, since the
// report text itself is the evidence.
func (s *Service) Email(ctx context.Context, text, reporterUID string, verificationID int64) error {
	description := fmt.Sprintf("verification %d could not be resolved", verificationID)
	record, err := s.verifications.FindByID(ctx, verificationID)
	if err == nil {
		description = record.String()
	}

	now := requestcontext.Now(ctx)
	body := fmt.Sprintf(messageBody, now.Format("2006-01-02 15:04:05"), reporterUID, description, text)
	msg := s.compose(body)

	if err := s.send(s.cfg.SMTPAddr, s.cfg.From, s.cfg.To, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to send suspicious interaction report",
			"server", s.cfg.SMTPAddr,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not send report")
	}

	s.logger.InfoContext(ctx, "emailed suspicious interaction report",
		"from", s.cfg.From,
		"to", strings.Join(s.cfg.To, ", "),
		"server", s.cfg.SMTPAddr,
		"verification_id", verificationID,
	)
	return nil
}

func (s *Service) compose(body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(s.cfg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", s.cfg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
