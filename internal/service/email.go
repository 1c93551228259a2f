package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host, port, username, password, from string) EmailService {
	p, _ := strconv.Atoi(port)
	return &emailService{
		host:     host,
		port:     p,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) SendOverdueReminder(ctx context.Context, email, name, itemTitle string, dueAt time.Time, daysLate, accruedFine int32) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Overdue: %s", itemTitle))

	body := fmt.Sprintf(
		"Hello %s,\n\nThe item '%s' was due on %s and is now %d day(s) overdue.\nThe fine accrued so far is %d. Please return the item at your earliest convenience.\n\nBest regards,\nThe Library Team",
		name, itemTitle, dueAt.Format("2006-01-02"), daysLate, accruedFine)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}

	return nil
}
