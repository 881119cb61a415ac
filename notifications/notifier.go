package notifications

import "errors"

// Notifier adapts the package email client to the services.Notifier
// interface.
type Notifier struct{}

func (Notifier) Send(toName, toEmail, subject, htmlBody string) error {
	if EmailClient == nil {
		return errors.New("email client not initialized")
	}
	return EmailClient.Send(toName, toEmail, subject, htmlBody)
}
