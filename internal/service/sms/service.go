package sms

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/time/rate"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/config"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type Service interface {
	SendDonationInvite(ctx context.Context, toPhone, donorName, hospitalName string, group domain.BloodGroup, urgency domain.Urgency, responseLink string) error
	SendDonationThanks(ctx context.Context, toPhone, donorName string) error
	// Enabled reports whether a gateway is configured at all. Runtime
	// opt-out lives in settings; this covers missing credentials.
	Enabled() bool
}

type service struct {
	client      *twilio.RestClient
	from        string
	countryCode string
	limiter     *rate.Limiter
}

// NewService builds the gateway client. With empty credentials the service
// drops messages instead of calling out, so local setups work without a
// Twilio account.
func NewService(cfg *config.Config) Service {
	var client *twilio.RestClient
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}

	return &service{
		client:      client,
		from:        cfg.TwilioFromNumber,
		countryCode: cfg.CountryCode,
		limiter:     rate.NewLimiter(rate.Limit(cfg.SMSRatePerSecond), cfg.SMSBurst),
	}
}

func (s *service) Enabled() bool {
	return s.client != nil && s.from != ""
}

func (s *service) SendDonationInvite(ctx context.Context, toPhone, donorName, hospitalName string, group domain.BloodGroup, urgency domain.Urgency, responseLink string) error {
	body := fmt.Sprintf(
		"Hi %s, %s urgently needs %s blood (%s). If you can donate, tap to share your location: %s",
		donorName, hospitalName, group, urgency, responseLink,
	)
	return s.send(ctx, toPhone, body)
}

func (s *service) SendDonationThanks(ctx context.Context, toPhone, donorName string) error {
	body := fmt.Sprintf("Thank you %s! Your blood donation has been confirmed. You may be eligible to donate again in 90 days.", donorName)
	return s.send(ctx, toPhone, body)
}

func (s *service) send(ctx context.Context, toPhone, body string) error {
	if !s.Enabled() {
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.toE164(toPhone))
	params.SetFrom(s.from)
	params.SetBody(body)

	_, err := s.client.Api.CreateMessage(params)
	return err
}

// toE164 renders a stored phone number in +<digits> form, prefixing the
// configured country code when the number was stored bare.
func (s *service) toE164(raw string) string {
	digits := domain.NormalizePhone(raw)
	if digits == "" {
		return raw
	}
	if strings.HasPrefix(raw, "+") {
		return "+" + digits
	}
	if s.countryCode != "" && !strings.HasPrefix(digits, s.countryCode) {
		return "+" + s.countryCode + digits
	}
	return "+" + digits
}
