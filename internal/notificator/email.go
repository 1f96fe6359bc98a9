package notificator

import (
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/mannapay/mannapay/pkg/logger"
)

const emailSubject = "MannaPay notification"

type EmailNotificator struct {
	logger *logger.Logger

	SMTPHost            string
	SMTPPort            int
	SMTPAlternativePort int
	SMTPUser            string
	SMTPPassword        string
	SMTPSender          string

	SMTPAuth smtp.Auth

	// sendMail is smtp.SendMail, replaced in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailNotificator(logger *logger.Logger, SMTPHost string, SMTPPort int, SMTPAlternativePort int, SMTPUser string, SMTPPassword string, SMTPSender string) *EmailNotificator {
	auth := smtp.PlainAuth(
		"",
		SMTPUser,
		SMTPPassword,
		SMTPHost,
	)

	return &EmailNotificator{
		logger:              logger.Named("email"),
		SMTPAuth:            auth,
		SMTPHost:            SMTPHost,
		SMTPPort:            SMTPPort,
		SMTPAlternativePort: SMTPAlternativePort,
		SMTPUser:            SMTPUser,
		SMTPPassword:        SMTPPassword,
		SMTPSender:          SMTPSender,
		sendMail:            smtp.SendMail,
	}
}

// SendNotification mails message to the given address. The alternative port is
// tried when sending through the primary port fails.
func (e *EmailNotificator) SendNotification(to, message string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		e.SMTPSender,
		to,
		emailSubject,
		message,
	))

	err := e.sendMail(e.addr(e.SMTPPort), e.SMTPAuth, e.SMTPSender, []string{to}, msg)
	if err == nil {
		return nil
	}
	if e.SMTPAlternativePort == 0 || e.SMTPAlternativePort == e.SMTPPort {
		return fmt.Errorf("failed to send email: %w", err)
	}
	e.logger.Warnw("primary SMTP port failed, trying alternative", "port", e.SMTPPort, "error", err)
	if err := e.sendMail(e.addr(e.SMTPAlternativePort), e.SMTPAuth, e.SMTPSender, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (e *EmailNotificator) addr(port int) string {
	return fmt.Sprintf("%s:%s", e.SMTPHost, strconv.Itoa(port))
}
