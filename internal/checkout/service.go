package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/RafaGarcia5/grocerease-api/internal/cart"
	"github.com/RafaGarcia5/grocerease-api/internal/orders"
	"github.com/RafaGarcia5/grocerease-api/internal/products"
	"github.com/RafaGarcia5/grocerease-api/pkg/config"
	"github.com/RafaGarcia5/grocerease-api/pkg/db"
	"github.com/RafaGarcia5/grocerease-api/pkg/db/models"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	pkgerrors "github.com/RafaGarcia5/grocerease-api/pkg/errors"
)

// Confirmation statuses returned by Confirm.
const (
	StatusUnpaid         = "unpaid"
	StatusAlreadyCreated = "already_created"
	StatusSuccess        = "success"
)

// InitiateResponse carries the hosted payment page handle back to the client.
type InitiateResponse struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

// ConfirmRequest identifies the checkout session to reconcile.
type ConfirmRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// ConfirmResponse reports the reconciliation outcome.
type ConfirmResponse struct {
	Status string        `json:"status"`
	Order  *models.Order `json:"order,omitempty"`
}

// Service drives the hosted-checkout payment flow.
type Service interface {
	Initiate(ctx context.Context, userID uuid.UUID) (*InitiateResponse, error)
	Confirm(ctx context.Context, userID uuid.UUID, req ConfirmRequest) (*ConfirmResponse, error)
}

// TxRunner executes a function within a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartRepository interface {
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	MarkCheckedOut(ctx context.Context, cartID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
}

type orderRepository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
}

type stockReserver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ReserveStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
}

// ServiceParams packages the checkout service dependencies. Factories bind
// the repositories to the reconciliation transaction.
type ServiceParams struct {
	TxRunner           TxRunner
	CartRepo           cartRepository
	OrderRepo          orderRepository
	Stripe             StripeCheckoutClient
	Checkout           config.CheckoutConfig
	CartRepoFactory    func(tx *gorm.DB) cartRepository
	OrderRepoFactory   func(tx *gorm.DB) orderRepository
	ProductRepoFactory func(tx *gorm.DB) stockReserver
}

type service struct {
	tx        TxRunner
	cartRepo  cartRepository
	orderRepo orderRepository
	stripeAPI StripeCheckoutClient
	cfg       config.CheckoutConfig
	cartTx    func(tx *gorm.DB) cartRepository
	orderTx   func(tx *gorm.DB) orderRepository
	productTx func(tx *gorm.DB) stockReserver
}

// NewService constructs a checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repository required")
	}
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if params.CartRepoFactory == nil {
		params.CartRepoFactory = func(tx *gorm.DB) cartRepository {
			return cart.NewRepository(tx)
		}
	}
	if params.OrderRepoFactory == nil {
		params.OrderRepoFactory = func(tx *gorm.DB) orderRepository {
			return orders.NewRepository(tx)
		}
	}
	if params.ProductRepoFactory == nil {
		params.ProductRepoFactory = func(tx *gorm.DB) stockReserver {
			return products.NewRepository(tx)
		}
	}
	return &service{
		tx:        params.TxRunner,
		cartRepo:  params.CartRepo,
		orderRepo: params.OrderRepo,
		stripeAPI: params.Stripe,
		cfg:       params.Checkout,
		cartTx:    params.CartRepoFactory,
		orderTx:   params.OrderRepoFactory,
		productTx: params.ProductRepoFactory,
	}, nil
}

// Initiate builds a Stripe Checkout Session from the active cart. No order is
// created and no stock is reserved until the payment is confirmed.
func (s *service) Initiate(ctx context.Context, userID uuid.UUID) (*InitiateResponse, error) {
	activeCart, err := s.loadActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(activeCart.Items))
	for _, item := range activeCart.Items {
		product := item.Product
		if product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart references a missing product")
		}
		if product.Status != enums.ProductStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available").
				WithDetails(map[string]any{"product": product.Name})
		}
		if product.Stock < item.Quantity {
			return nil, insufficientStock(product, item.Quantity)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(s.cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(product.Name),
				},
				UnitAmount: stripe.Int64(toCents(product.Price)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	session, err := s.stripeAPI.CreateSession(ctx, &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(s.cfg.SuccessURL()),
		CancelURL:          stripe.String(s.cfg.CancelURL()),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	return &InitiateResponse{
		CheckoutURL: session.URL,
		SessionID:   session.ID,
	}, nil
}

// Confirm reconciles a paid checkout session into an order. It is safe to
// call repeatedly: the session id is unique on orders, so a replay returns
// the already reconciled order.
func (s *service) Confirm(ctx context.Context, userID uuid.UUID, req ConfirmRequest) (*ConfirmResponse, error) {
	if req.SessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session_id is required")
	}

	session, err := s.stripeAPI.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve checkout session")
	}
	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return &ConfirmResponse{Status: StatusUnpaid}, nil
	}

	if existing, err := s.orderRepo.FindBySessionID(ctx, req.SessionID); err == nil {
		return &ConfirmResponse{Status: StatusAlreadyCreated, Order: existing}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reconciled order")
	}

	activeCart, err := s.loadActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	var orderID uuid.UUID
	sessionID := req.SessionID
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.productTx(tx)
		cartRepo := s.cartTx(tx)

		details := make([]models.OrderDetail, 0, len(activeCart.Items))
		total := decimal.Zero
		for _, item := range activeCart.Items {
			product, err := productRepo.FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeStateConflict, "cart references a missing product")
				}
				return err
			}
			ok, err := productRepo.ReserveStock(ctx, product.ID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return insufficientStock(product, item.Quantity)
			}

			productID := item.ProductID
			details = append(details, models.OrderDetail{
				ProductID: &productID,
				Pieces:    item.Quantity,
				UnitPrice: product.Price,
			})
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		order, err := s.orderTx(tx).Create(ctx, &models.Order{
			UserID:          userID,
			OrderDate:       time.Now().UTC(),
			Status:          enums.OrderStatusPending,
			Total:           total,
			StripeSessionID: &sessionID,
			Details:         details,
		})
		if err != nil {
			return err
		}
		orderID = order.ID

		if err := cartRepo.MarkCheckedOut(ctx, activeCart.ID); err != nil {
			return err
		}
		return cartRepo.ClearItems(ctx, activeCart.ID)
	})
	if txErr != nil {
		// Two confirmations raced on the session id; the other one won.
		if db.IsUniqueViolation(txErr, "stripe_session_id") {
			if existing, err := s.orderRepo.FindBySessionID(ctx, req.SessionID); err == nil {
				return &ConfirmResponse{Status: StatusAlreadyCreated, Order: existing}, nil
			}
		}
		if coded := pkgerrors.As(txErr); coded != nil {
			return nil, coded
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, txErr, "reconcile payment")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reconciled order")
	}
	return &ConfirmResponse{Status: StatusSuccess, Order: order}, nil
}

func (s *service) loadActiveCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	activeCart, err := s.cartRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(activeCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}
	return activeCart, nil
}

// toCents converts a decimal price into Stripe's integer unit amount.
func toCents(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func insufficientStock(product *models.Product, requested int) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
		WithDetails(map[string]any{
			"stock":     fmt.Sprintf("insufficient stock for %s: %d available", product.Name, product.Stock),
			"product":   product.Name,
			"requested": requested,
			"available": product.Stock,
		})
}
