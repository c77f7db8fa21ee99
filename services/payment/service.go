package payment

import (
	"context"

	"go.uber.org/zap"

	"authnet-cim/models"
	"authnet-cim/services/notification"
	"authnet-cim/services/payment/authorizenet"
)

// Service runs CIM operations and then records the response and dispatches
// the returned events. Recording and dispatch failures are logged only; the
// caller always gets the gateway's result.
type Service struct {
	gateway  Gateway
	store    Store
	notifier notification.Notifier
	logger   *zap.Logger
}

type Option func(*Service)

func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

func WithNotifier(n notification.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewPaymentService(gateway Gateway, opts ...Option) *Service {
	s := &Service{
		gateway: gateway,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) AddProfile(ctx context.Context, customerID string, paymentForm, billingForm authorizenet.FormData) (*authorizenet.ProfileResult, error) {
	s.logger.Info("Creating customer profile", zap.String("customer_id", customerID))

	result, err := s.gateway.AddProfile(ctx, customerID, paymentForm, billingForm)
	if err != nil {
		s.logger.Error("Error creating customer profile", zap.String("customer_id", customerID), zap.Error(err))
		return nil, err
	}

	s.record(ctx, result.Response)
	if result.Response.Success && s.store != nil {
		if err := s.store.SaveCustomerProfile(ctx, customerID, result.ProfileID, result.PaymentProfileIDs); err != nil {
			s.logger.Error("Error saving customer profile", zap.String("profile_id", result.ProfileID), zap.Error(err))
		}
	}
	s.notify(ctx, result.Events)

	return result, nil
}

func (s *Service) CreatePaymentProfile(ctx context.Context, profileID string, paymentForm, billingForm authorizenet.FormData) (*authorizenet.PaymentProfileResult, error) {
	result, err := s.gateway.CreatePaymentProfile(ctx, profileID, paymentForm, billingForm)
	if err != nil {
		s.logger.Error("Error creating payment profile", zap.String("profile_id", profileID), zap.Error(err))
		return nil, err
	}

	s.record(ctx, result.Response)
	if result.Response.Success && s.store != nil {
		if err := s.store.SavePaymentProfile(ctx, profileID, result.PaymentProfileID); err != nil {
			s.logger.Error("Error saving payment profile", zap.String("profile_id", profileID), zap.Error(err))
		}
	}

	return result, nil
}

func (s *Service) UpdatePaymentProfile(ctx context.Context, profileID, paymentProfileID string, paymentForm, billingForm authorizenet.FormData) (*models.CIMResponse, error) {
	resp, err := s.gateway.UpdatePaymentProfile(ctx, profileID, paymentProfileID, paymentForm, billingForm)
	if err != nil {
		s.logger.Error("Error updating payment profile",
			zap.String("profile_id", profileID),
			zap.String("payment_profile_id", paymentProfileID),
			zap.Error(err),
		)
		return nil, err
	}

	s.record(ctx, resp)
	return resp, nil
}

func (s *Service) DeletePaymentProfile(ctx context.Context, profileID, paymentProfileID string) (*models.CIMResponse, error) {
	resp, err := s.gateway.DeletePaymentProfile(ctx, profileID, paymentProfileID)
	if err != nil {
		s.logger.Error("Error deleting payment profile",
			zap.String("profile_id", profileID),
			zap.String("payment_profile_id", paymentProfileID),
			zap.Error(err),
		)
		return nil, err
	}

	s.record(ctx, resp)
	if resp.Success && s.store != nil {
		if err := s.store.DeletePaymentProfile(ctx, profileID, paymentProfileID); err != nil {
			s.logger.Error("Error removing stored payment profile", zap.String("profile_id", profileID), zap.Error(err))
		}
	}

	return resp, nil
}

func (s *Service) GetProfile(ctx context.Context, profileID string) (*authorizenet.GetProfileResult, error) {
	result, err := s.gateway.GetProfile(ctx, profileID)
	if err != nil {
		s.logger.Error("Error getting customer profile", zap.String("profile_id", profileID), zap.Error(err))
		return nil, err
	}

	s.record(ctx, result.Response)
	return result, nil
}

func (s *Service) ProcessTransaction(ctx context.Context, p authorizenet.TransactionParams) (*authorizenet.TransactionResult, error) {
	s.logger.Info("Processing transaction",
		zap.String("type", string(p.Type)),
		zap.String("profile_id", p.ProfileID),
		zap.String("amount", p.Amount.StringFixed(2)),
	)

	result, err := s.gateway.ProcessTransaction(ctx, p)
	if err != nil {
		s.logger.Error("Error processing transaction", zap.String("profile_id", p.ProfileID), zap.Error(err))
		return nil, err
	}

	if tx := result.Response.TransactionResponse; tx != nil {
		s.logger.Info("Transaction processed",
			zap.String("trans_id", tx.TransactionID),
			zap.String("response_code", tx.ResponseCode),
			zap.String("reason", tx.ResponseReasonText),
		)
	}

	s.record(ctx, result.Response)
	s.notify(ctx, result.Events)

	return result, nil
}

func (s *Service) record(ctx context.Context, resp *models.CIMResponse) {
	if s.store == nil || resp == nil {
		return
	}
	if err := s.store.SaveCIMResponse(ctx, resp); err != nil {
		s.logger.Error("Error saving cim response", zap.String("action", resp.Action), zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, events []authorizenet.Event) {
	if s.notifier == nil || len(events) == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, events); err != nil {
		s.logger.Error("Error dispatching events", zap.Int("count", len(events)), zap.Error(err))
	}
}
