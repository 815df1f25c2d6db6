// Package mail delivers customer notifications over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	gomail "github.com/wneessen/go-mail"

	"github.com/artistgrade/storefront/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config captures the SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// TLS is "mandatory", "opportunistic" or "none".
	TLS       string
	StoreName string
	Timeout   time.Duration
}

// Notifier implements ports.Notifier with go-mail.
type Notifier struct {
	cfg  Config
	log  zerolog.Logger
	send func(ctx context.Context, msg *gomail.Msg) error
}

func NewNotifier(cfg Config, log zerolog.Logger) *Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.StoreName == "" {
		cfg.StoreName = "The Storefront team"
	}
	n := &Notifier{cfg: cfg, log: log}
	n.send = n.dialAndSend
	return n
}

func (n *Notifier) SendRequestConfirmation(ctx context.Context, req *domain.CustomRequest) error {
	body, err := renderRequestConfirmation(n.cfg.StoreName, req)
	if err != nil {
		return err
	}
	msg, err := n.newMessage(req.Email, "We received your custom request", body)
	if err != nil {
		return err
	}
	return n.deliver(ctx, msg)
}

// SendOrderReceipt mails the order summary with a QR code of the order id
// attached.
func (n *Notifier) SendOrderReceipt(ctx context.Context, order *domain.Order) error {
	body, err := renderOrderReceipt(n.cfg.StoreName, order)
	if err != nil {
		return err
	}
	msg, err := n.newMessage(order.Email, fmt.Sprintf("Your order %s", order.ID), body)
	if err != nil {
		return err
	}

	png, err := qrcode.Encode(order.ID, qrcode.Medium, 256)
	if err != nil {
		n.log.Warn().Err(err).Str("order_id", order.ID).Msg("qr code generation failed, sending receipt without it")
	} else {
		msg.AttachReader("order-"+order.ID+".png", bytes.NewReader(png))
	}

	return n.deliver(ctx, msg)
}

func (n *Notifier) newMessage(to, subject, htmlBody string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("%w: from address: %v", domain.ErrNotifier, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("%w: to address: %v", domain.ErrNotifier, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)
	return msg, nil
}

func (n *Notifier) deliver(ctx context.Context, msg *gomail.Msg) error {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotifier, err)
	}
	return nil
}

func (n *Notifier) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	opts := []gomail.Option{
		gomail.WithPort(n.cfg.Port),
		gomail.WithTimeout(n.cfg.Timeout),
		gomail.WithTLSPolicy(tlsPolicy(n.cfg.TLS)),
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthLogin),
			gomail.WithUsername(n.cfg.Username),
			gomail.WithPassword(n.cfg.Password),
		)
	}

	client, err := gomail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

func tlsPolicy(s string) gomail.TLSPolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return gomail.NoTLS
	case "opportunistic":
		return gomail.TLSOpportunistic
	default:
		return gomail.TLSMandatory
	}
}
