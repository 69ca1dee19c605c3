package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"exquisitos/internal/config"
	"exquisitos/internal/domain"
	"exquisitos/internal/redis"
	"exquisitos/pkg/e"

	"gopkg.in/gomail.v2"
)

// MailSender drains the reset-mail queue and delivers each token to the
// user's inbox over SMTP. Delivery is out-of-band: the HTTP response to the
// reset request never waits for it.
type MailSender struct {
	logger *slog.Logger
	cfg    config.MailConfig
	queue  *redis.MailQueue
	dialer *gomail.Dialer
}

func NewMailSender(logger *slog.Logger, cfg config.MailConfig, q *redis.MailQueue) *MailSender {
	return &MailSender{
		logger: logger,
		cfg:    cfg,
		queue:  q,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

func (s *MailSender) Run(ctx context.Context) {
	s.logger.Info("mailSender STARTED", slog.String("smtp_host", s.cfg.SMTPHost))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("mailSender STOPPED", slog.String("reason", ctx.Err().Error()))
			return
		default:
		}

		mail, err := s.queue.BRPop(ctx, 5*time.Second)
		if err != nil {
			if errors.Is(err, e.ErrMailQueueEmpty) {
				continue
			}
			s.logger.Error("BRPop failed", slog.Any("error", err))
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if s.cfg.Disabled {
			s.logger.Warn("mail delivery disabled, dropping message", slog.String("mail_id", mail.ID.String()))
			continue
		}

		s.logger.Info("sending reset mail", slog.String("mail_id", mail.ID.String()))
		s.sendWithRetry(ctx, mail)
	}
}

func (s *MailSender) sendWithRetry(ctx context.Context, mail domain.ResetMail) {
	const maxRetries = 3

	msg := s.buildMessage(mail)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			s.logger.Info("stop retries due to context cancel")
			return
		}

		err := s.dialer.DialAndSend(msg)
		if err == nil {
			s.logger.Info("reset mail delivered", slog.String("mail_id", mail.ID.String()))
			return
		}

		s.logger.Warn("reset mail send failed",
			slog.Int("attempt", attempt),
			slog.String("mail_id", mail.ID.String()),
			slog.Any("error", err),
		)

		time.Sleep(time.Duration(attempt) * time.Second)
	}
}

func (s *MailSender) buildMessage(mail domain.ResetMail) *gomail.Message {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendOrigin, mail.Token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", mail.Email)
	msg.SetHeader("Subject", "Recuperación de contraseña")
	msg.SetBody("text/html", fmt.Sprintf(`
		<h3>Has solicitado restablecer tu contraseña</h3>
		<p>Usa el siguiente código o haz clic en el enlace:</p>
		<p><b>Código: %s</b></p>
		<a href="%s">Restablecer contraseña aquí</a>
		<p>Este enlace expira en 1 hora.</p>
	`, mail.Token, resetLink))

	return msg
}
