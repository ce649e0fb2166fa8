package payments

import (
	"fmt"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// Service wraps the payment gateway. One intent per order: an order that
// already carries a usable intent gets it back instead of a fresh one.
type Service struct {
	logger *logger.Logger
}

func NewService(cfg config.StripeConfig, log *logger.Logger) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{logger: log}
}

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// CreateIntent creates (or retrieves) a payment intent for an order. Amount
// arrives in major units and is converted to minor units with exact decimal
// arithmetic.
func (s *Service) CreateIntent(orderID, existingIntentID string, amount float64, currency string) (*Intent, error) {
	if existingIntentID != "" {
		intent, err := paymentintent.Get(existingIntentID, nil)
		if err != nil {
			s.logger.Warn("PAYMENT", fmt.Sprintf("Failed to retrieve existing intent %s, creating a new one: %v", existingIntentID, err))
		} else if intent.Status != stripe.PaymentIntentStatusCanceled && intent.Status != stripe.PaymentIntentStatusSucceeded {
			s.logger.Info("PAYMENT", fmt.Sprintf("Reusing payment intent %s (status %s)", intent.ID, intent.Status))
			return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret, Status: string(intent.Status)}, nil
		}
	}

	amountMinor := decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", orderID)

	intent, err := paymentintent.New(params)
	if err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("Failed to create payment intent for order %s: %v", orderID, err))
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	s.logger.Info("PAYMENT", fmt.Sprintf("Created payment intent %s for order %s (%s %.2f)", intent.ID, orderID, currency, amount))
	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret, Status: string(intent.Status)}, nil
}
