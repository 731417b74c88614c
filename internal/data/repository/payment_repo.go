package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/apiclient"

	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, bookingID, provider string) (*entity.Payment, error)
	FindByID(ctx context.Context, paymentID string) (*entity.Payment, error)
}

type paymentRepository struct {
	client apiclient.Requester
	log    *zap.Logger
}

func NewPaymentRepository(client apiclient.Requester, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		client: client,
		log:    log.With(zap.String("repository", "payment")),
	}
}

type createPaymentBody struct {
	BookingID string `json:"bookingId"`
	Provider  string `json:"provider"`
}

func (r *paymentRepository) Create(ctx context.Context, bookingID, provider string) (*entity.Payment, error) {
	var payment entity.Payment
	body := createPaymentBody{BookingID: bookingID, Provider: provider}

	if err := r.client.Do(ctx, http.MethodPost, "/api/payments", body, &payment); err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("booking_id", bookingID),
			zap.String("provider", provider),
		)
		return nil, fmt.Errorf("create payment for booking %s: %w", bookingID, err)
	}

	return &payment, nil
}

func (r *paymentRepository) FindByID(ctx context.Context, paymentID string) (*entity.Payment, error) {
	var payment entity.Payment
	path := "/api/payments/" + url.PathEscape(paymentID)

	if err := r.client.Do(ctx, http.MethodGet, path, nil, &payment); err != nil {
		return nil, fmt.Errorf("find payment %s: %w", paymentID, err)
	}

	return &payment, nil
}
