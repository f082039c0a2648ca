package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/freee021022/onconet/internal/config"
	"github.com/freee021022/onconet/internal/model"
)

type smtpService struct {
	from string
	send func(...*gomail.Message) error
}

// NewService returns an SMTP sender when cfg names a host and a logging
// no-op otherwise.
func NewService(cfg config.MailConfig) Service {
	if !cfg.Enabled() {
		return noopService{}
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &smtpService{from: cfg.From, send: dialer.DialAndSend}
}

func (s *smtpService) SendSecondOpinionRequested(ctx context.Context, doctor, patient *model.User, req *model.SecondOpinionRequest) error {
	subject := "New second opinion request"
	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>%s has asked for your second opinion.</p><p><b>Diagnosis:</b> %s</p><p>%s</p><p>Request #%d is waiting for your answer.</p>",
		doctor.FullName, patient.FullName, req.Diagnosis, req.Description, req.ID,
	)
	return s.SendCustom(ctx, doctor.Email, subject, body)
}

func (s *smtpService) SendSosContractCreated(ctx context.Context, doctor, patient *model.User, contract *model.SosContract) error {
	subject := "You were named in an SOS contract"
	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>%s named you as emergency contact (contract #%d, access level %s). You will be able to see the shared records once the contract is active.</p>",
		doctor.FullName, patient.FullName, contract.ID, contract.AccessLevel,
	)
	return s.SendCustom(ctx, doctor.Email, subject, body)
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", content)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

type noopService struct{}

func (noopService) SendSecondOpinionRequested(ctx context.Context, doctor, patient *model.User, req *model.SecondOpinionRequest) error {
	return noopService{}.SendCustom(ctx, doctor.Email, "second opinion requested", "")
}

func (noopService) SendSosContractCreated(ctx context.Context, doctor, patient *model.User, contract *model.SosContract) error {
	return noopService{}.SendCustom(ctx, doctor.Email, "sos contract created", "")
}

func (noopService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	zerolog.Ctx(ctx).Debug().Str("to", to).Str("subject", subject).Msg("mail disabled, notification skipped")
	return nil
}
