package email

import (
	"context"
	"errors"
)

// Sender define la interfaz para envío de correos del ciclo de cuenta.
type Sender interface {
	SendVerificationLink(ctx context.Context, toEmail, link string) error
	SendResetLink(ctx context.Context, toEmail, link string) error
	SendOTP(ctx context.Context, toEmail, code string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationLink(_ context.Context, _, _ string) error {
	return s.err()
}

func (s *disabledSender) SendResetLink(_ context.Context, _, _ string) error {
	return s.err()
}

func (s *disabledSender) SendOTP(_ context.Context, _, _ string) error {
	return s.err()
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
