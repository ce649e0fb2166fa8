package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"

	"gopkg.in/gomail.v2"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<h2>Thanks for your order, {{.CustomerName}}!</h2>
<p>Your order <strong>{{.OrderNumber}}</strong> for {{.EventName}} is {{.Status}}.</p>
<table>
  <tr><td>Event</td><td>{{.EventName}}</td></tr>
  {{if .VenueName}}<tr><td>Venue</td><td>{{.VenueName}}</td></tr>{{end}}
  {{if .EventDate}}<tr><td>Date</td><td>{{.EventDate}}</td></tr>{{end}}
  <tr><td>Tickets</td><td>{{.Quantity}}</td></tr>
  <tr><td>Total</td><td>{{.Currency}} {{printf "%.2f" .TotalPrice}}</td></tr>
</table>
<p>We'll email your tickets as soon as they are issued.</p>
`))

var ticketsTmpl = template.Must(template.New("tickets").Parse(`
<h2>Your tickets are ready!</h2>
<p>Order <strong>{{.Order.OrderNumber}}</strong> — {{.Order.EventName}}</p>
<ul>
{{range .Tickets}}<li>Ticket {{.ID}}{{if .Seat}} — seat {{.Seat}}{{end}}</li>
{{end}}</ul>
<p>Show the attached QR codes at the venue entrance.</p>
`))

type Mailer struct {
	cfg    config.EmailConfig
	logger *logger.Logger
}

func New(cfg config.EmailConfig, log *logger.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: log}
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUsername, m.cfg.SMTPPassword)
	return dialer.DialAndSend(msg)
}

// SendOrderConfirmation emails the customer after checkout. Fire and
// forget: delivery failures are logged, the checkout response never waits.
func (m *Mailer) SendOrderConfirmation(order models.Order) {
	go func() {
		var body bytes.Buffer
		if err := confirmationTmpl.Execute(&body, order); err != nil {
			m.logger.Error("MAILER", fmt.Sprintf("Failed to render confirmation for %s: %v", order.OrderNumber, err))
			return
		}
		subject := fmt.Sprintf("Order confirmation #%s", order.OrderNumber)
		if err := m.send(order.CustomerEmail, subject, body.String()); err != nil {
			m.logger.Error("MAILER", fmt.Sprintf("Failed to send confirmation for %s: %v", order.OrderNumber, err))
			return
		}
		m.logger.Info("MAILER", fmt.Sprintf("Confirmation sent for order %s", order.OrderNumber))
	}()
}

// SendTickets emails issued tickets with their QR codes attached.
func (m *Mailer) SendTickets(order models.Order, tickets []models.Ticket) {
	go func() {
		var body bytes.Buffer
		data := struct {
			Order   models.Order
			Tickets []models.Ticket
		}{order, tickets}
		if err := ticketsTmpl.Execute(&body, data); err != nil {
			m.logger.Error("MAILER", fmt.Sprintf("Failed to render ticket email for %s: %v", order.OrderNumber, err))
			return
		}

		msg := gomail.NewMessage()
		msg.SetHeader("From", m.cfg.From)
		msg.SetHeader("To", order.CustomerEmail)
		msg.SetHeader("Subject", fmt.Sprintf("Your tickets for %s (#%s)", order.EventName, order.OrderNumber))
		msg.SetBody("text/html", body.String())

		for i := range tickets {
			if len(tickets[i].QRCode) == 0 {
				continue
			}
			name := fmt.Sprintf("ticket-%d.png", i+1)
			qr := tickets[i].QRCode
			msg.Attach(name, gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(qr)
				return err
			}))
		}

		dialer := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUsername, m.cfg.SMTPPassword)
		if err := dialer.DialAndSend(msg); err != nil {
			m.logger.Error("MAILER", fmt.Sprintf("Failed to send tickets for %s: %v", order.OrderNumber, err))
			return
		}
		m.logger.Info("MAILER", fmt.Sprintf("Tickets sent for order %s", order.OrderNumber))
	}()
}
