// Package billing integrates the payment provider: checkout session creation
// for credit purchases and webhook confirmation that grants the credits.
package billing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/google/uuid"
	"github.com/launchpadhq/launchpad/config"
	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/launchpadhq/launchpad/internal/ledger"
	"github.com/launchpadhq/launchpad/pkg/common"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Service creates checkout sessions and settles webhook events against the
// credit ledger. Each valid checkout.session.completed event grants exactly
// once; redeliveries are deduplicated on the provider event id.
type Service struct {
	cfg    config.StripeConfig
	api    *client.API
	db     *gorm.DB
	ledger *ledger.CreditLedger
}

func NewService(cfg config.StripeConfig, db *gorm.DB, creditLedger *ledger.CreditLedger) *Service {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &Service{cfg: cfg, api: api, db: db, ledger: creditLedger}
}

// CreateCheckout opens a hosted checkout session for a credit purchase and
// returns its URL.
func (s *Service) CreateCheckout(ctx context.Context, userID, credits int64) (string, error) {
	if credits <= 0 {
		return "", errs.Validation("invalid credit amount")
	}

	centsPerUnit := s.cfg.CentsPerUnit
	if centsPerUnit <= 0 {
		centsPerUnit = 100
	}

	reference := uuid.NewString()
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("%d AI Generation Credits", credits)),
						Description: stripe.String("Credits for the LaunchPad content pipeline"),
					},
					UnitAmount: stripe.Int64(credits * centsPerUnit),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(reference),
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.FormatInt(userID, 10))
	params.AddMetadata("credits", strconv.FormatInt(credits, 10))

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", errs.Internal("checkout session creation failed", err)
	}

	zap.L().Info("checkout session created",
		zap.Int64("user_id", userID),
		zap.Int64("credits", credits),
		zap.String("reference", reference))
	return session.URL, nil
}

// HandleWebhook verifies a webhook delivery and, for completed checkouts,
// grants the purchased credits exactly once.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return errs.Wrap(errs.KindValidation, "webhook signature verification failed", err)
	}

	if event.Type != "checkout.session.completed" {
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return errs.Wrap(errs.KindValidation, "malformed checkout session payload", err)
	}

	userID, err := strconv.ParseInt(session.Metadata["user_id"], 10, 64)
	if err != nil {
		return errs.Validation("checkout session missing user metadata")
	}
	credits, err := strconv.ParseInt(session.Metadata["credits"], 10, 64)
	if err != nil || credits <= 0 {
		return errs.Validation("checkout session missing credits metadata")
	}

	// The unique index on event_id makes redelivered events no-ops.
	record := &domain.SysPaymentEvent{
		ID:        common.UUIDint64(),
		EventId:   event.ID,
		UserId:    userID,
		Credits:   credits,
		Reference: session.ClientReferenceID,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		zap.L().Info("duplicate payment event ignored",
			zap.String("event_id", event.ID),
			zap.Int64("user_id", userID))
		return nil
	}

	if err := s.ledger.Grant(ctx, userID, credits); err != nil {
		// Roll back the marker so the provider's retry can settle the grant.
		s.db.WithContext(ctx).Delete(record)
		return err
	}

	zap.L().Info("purchase settled",
		zap.String("event_id", event.ID),
		zap.Int64("user_id", userID),
		zap.Int64("credits", credits))
	return nil
}
