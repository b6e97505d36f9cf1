package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/glowbooking/glowbook/internal/app"
	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/integrations/telnyx"
	"github.com/glowbooking/glowbook/pkg/common"
	"github.com/glowbooking/glowbook/pkg/metrics"
)

// Event bus topics published by the public API handlers
const (
	TopicBookingCreated  = "booking.created"
	TopicQuoteCreated    = "quote.created"
	TopicReviewSubmitted = "review.submitted"
	TopicPaymentReceived = "payment.received"
)

// Mailer sends one email; satisfied by gomail and by test fakes
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMSSender sends one text; satisfied by the Telnyx client and test fakes
type SMSSender interface {
	SendSMS(ctx context.Context, to, text string) (string, error)
}

// Service turns domain events into customer and business notifications.
// Dispatch runs on a worker pool so request handlers never block on SMTP.
type Service struct {
	app    app.AppContext
	mailer Mailer
	sms    SMSSender
	pool   *ants.Pool
}

func New(appCtx app.AppContext) (*Service, error) {
	cfg := appCtx.Config()
	dialer := gomail.NewDialer(cfg.Brevo.SmtpHost, cfg.Brevo.SmtpPort,
		cfg.Brevo.Username, cfg.Brevo.Password)

	pool, err := ants.NewPool(8)
	if err != nil {
		return nil, err
	}

	return &Service{
		app:    appCtx,
		mailer: dialer,
		sms:    telnyx.New(&cfg.Telnyx),
		pool:   pool,
	}, nil
}

// Start subscribes the dispatch handlers on the application event bus
func (s *Service) Start() error {
	bus := s.app.Bus()
	if err := bus.SubscribeAsync(TopicBookingCreated, s.onBookingCreated, false); err != nil {
		return err
	}
	if err := bus.SubscribeAsync(TopicQuoteCreated, s.onQuoteCreated, false); err != nil {
		return err
	}
	if err := bus.SubscribeAsync(TopicReviewSubmitted, s.onReviewSubmitted, false); err != nil {
		return err
	}
	return bus.SubscribeAsync(TopicPaymentReceived, s.onPaymentReceived, false)
}

func (s *Service) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

func (s *Service) paymentLink(token string) string {
	base := s.app.GetSettingsStringValue("notify", "site_url")
	if base == "" {
		base = "https://example.com"
	}
	return strings.TrimRight(base, "/") + "/pay/" + token
}

func (s *Service) onBookingCreated(b domain.Booking) {
	link := s.paymentLink(b.PaymentToken)

	s.submit(func() {
		body := fmt.Sprintf(
			"Hi %s,\n\nYour booking for %s on %s is in. "+
				"A deposit of %s secures your spot:\n\n%s\n\nThank you!",
			b.CustomerName, b.PackageName,
			b.ScheduledAt.Format("Mon Jan 2 at 3:04 PM"),
			common.FmtAmount(b.DepositAmount), link)
		s.sendEmail(b.Email, "Your booking "+b.Ref, body)
	})

	s.submit(func() {
		biz := s.app.Config().Brevo.BusinessEmail
		if biz == "" {
			return
		}
		body := fmt.Sprintf("New booking %s: %s booked %s for %s, total %s.",
			b.Ref, b.CustomerName, b.PackageName,
			b.ScheduledAt.Format("2006-01-02 15:04"),
			common.FmtAmount(b.Total))
		s.sendEmail(biz, "New booking "+b.Ref, body)
	})

	s.submit(func() {
		biz := s.app.Config().Telnyx.BusinessPhone
		if biz == "" {
			return
		}
		s.sendSMS(biz, fmt.Sprintf("New booking %s from %s (%s)",
			b.Ref, b.CustomerName, common.FmtAmount(b.Total)))
	})

	metrics.IncrCounter("notify_booking_created")
}

func (s *Service) onQuoteCreated(q domain.Quote) {
	s.submit(func() {
		biz := s.app.Config().Brevo.BusinessEmail
		if biz == "" {
			return
		}
		body := fmt.Sprintf("New quote request %s from %s <%s> %s\nService: %s\n\n%s",
			q.Ref, q.Name, q.Email, q.Phone, q.ServiceName, q.Message)
		s.sendEmail(biz, "New quote request "+q.Ref, body)
	})

	s.submit(func() {
		biz := s.app.Config().Telnyx.BusinessPhone
		if biz == "" {
			return
		}
		s.sendSMS(biz, fmt.Sprintf("New quote request from %s (%s)", q.Name, q.ServiceName))
	})

	metrics.IncrCounter("notify_quote_created")
}

func (s *Service) onReviewSubmitted(r domain.Review) {
	s.submit(func() {
		biz := s.app.Config().Brevo.BusinessEmail
		if biz == "" {
			return
		}
		body := fmt.Sprintf("%s left a %d-star review pending moderation:\n\n%s",
			r.Name, r.Rating, r.Comment)
		s.sendEmail(biz, "New review pending moderation", body)
	})
}

func (s *Service) onPaymentReceived(b domain.Booking, phase string) {
	s.submit(func() {
		var body string
		if phase == "deposit" {
			body = fmt.Sprintf("Hi %s,\n\nWe received your deposit of %s for booking %s. "+
				"The balance of %s is due on completion.\n\nThank you!",
				b.CustomerName, common.FmtAmount(b.DepositAmount), b.Ref,
				common.FmtAmount(common.RoundCents(b.Total-b.DepositAmount)))
		} else {
			body = fmt.Sprintf("Hi %s,\n\nBooking %s is paid in full. See you soon!",
				b.CustomerName, b.Ref)
		}
		s.sendEmail(b.Email, "Payment received for "+b.Ref, body)
	})

	metrics.IncrCounter("notify_payment_received")
}

// SendPaymentReminders emails customers whose deposit is still unpaid.
// Bookings older than maxAge stop receiving reminders.
func (s *Service) SendPaymentReminders(ctx context.Context, maxAge time.Duration) error {
	var bookings []domain.Booking
	err := s.app.DB().WithContext(ctx).
		Where("status = ? and deposit_paid = ? and created_at > ?",
			domain.BookingPending, false, time.Now().Add(-maxAge)).
		Find(&bookings).Error
	if err != nil {
		return err
	}

	for i := range bookings {
		b := bookings[i]
		s.submit(func() {
			body := fmt.Sprintf(
				"Hi %s,\n\nJust a reminder: your booking %s is being held, "+
					"but the deposit of %s is still outstanding:\n\n%s\n",
				b.CustomerName, b.Ref,
				common.FmtAmount(b.DepositAmount),
				s.paymentLink(b.PaymentToken))
			s.sendEmail(b.Email, "Deposit reminder for "+b.Ref, body)
		})
	}

	zap.L().Info("payment reminders queued", zap.Int("count", len(bookings)))
	return nil
}

func (s *Service) submit(task func()) {
	if err := s.pool.Submit(task); err != nil {
		zap.L().Error("notify pool submit failed", zap.Error(err))
	}
}

func (s *Service) sendEmail(to, subject, body string) {
	if to == "" || !s.app.GetSettingsBoolValue("notify", "email_enabled") {
		return
	}
	cfg := s.app.Config().Brevo

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.mailer.DialAndSend(m); err != nil {
		zap.L().Error("send email failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return
	}
	zap.L().Info("email sent", zap.String("to", to), zap.String("subject", subject))
}

func (s *Service) sendSMS(to, text string) {
	if to == "" || !s.app.GetSettingsBoolValue("notify", "sms_enabled") {
		return
	}
	if _, err := s.sms.SendSMS(context.Background(), to, text); err != nil {
		zap.L().Error("send sms failed", zap.String("to", to), zap.Error(err))
		return
	}
	zap.L().Info("sms sent", zap.String("to", to))
}
