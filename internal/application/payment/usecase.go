package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/application/upload"
	"github.com/makerforge/quote3d-api/internal/domain"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
	"github.com/makerforge/quote3d-api/pkg/logger"
)

// PaymentUseCase compra de horas vía pasarela y flujo de órdenes de compra.
type PaymentUseCase struct {
	paymentRepo   repository.PaymentRepository
	quotationRepo repository.QuotationRepository
	userRepo      repository.UserRepository
	tx            TxRunner
	razorpay      RazorpayGateway
	paypal        PaypalGateway
	receipts      ReceiptGenerator
	store         upload.FileStore
	razorpaySecret string
	log           *logger.Logger
}

func NewPaymentUseCase(
	paymentRepo repository.PaymentRepository,
	quotationRepo repository.QuotationRepository,
	userRepo repository.UserRepository,
	tx TxRunner,
	razorpay RazorpayGateway,
	paypal PaypalGateway,
	receipts ReceiptGenerator,
	store upload.FileStore,
	razorpaySecret string,
	log *logger.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{
		paymentRepo:    paymentRepo,
		quotationRepo:  quotationRepo,
		userRepo:       userRepo,
		tx:             tx,
		razorpay:       razorpay,
		paypal:         paypal,
		receipts:       receipts,
		store:          store,
		razorpaySecret: razorpaySecret,
		log:            log,
	}
}

// CreateOrder abre una orden pendiente en la pasarela elegida. El monto llega
// en unidades menores (paise para INR, centavos para USD).
func (uc *PaymentUseCase) CreateOrder(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: el monto debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if !in.Hours.IsPositive() {
		return nil, fmt.Errorf("%w: las horas deben ser mayores que cero", domain.ErrInvalidInput)
	}

	switch in.Gateway {
	case entity.GatewayRazorpay:
		receipt := fmt.Sprintf("receipt_%d", time.Now().UnixMilli())
		orderID, err := uc.razorpay.CreateOrder(in.Amount, "INR", receipt)
		if err != nil {
			return nil, fmt.Errorf("%w: razorpay: %v", domain.ErrUpstream, err)
		}
		return &dto.OrderResponse{Gateway: in.Gateway, OrderID: orderID, Amount: in.Amount, Currency: "INR"}, nil

	case entity.GatewayPaypal:
		value := decimal.NewFromInt(in.Amount).Div(decimal.NewFromInt(100)).StringFixed(2)
		desc := fmt.Sprintf("Compra de %s horas de impresión", in.Hours.String())
		orderID, err := uc.paypal.CreateOrder(ctx, value, "USD", desc)
		if err != nil {
			return nil, fmt.Errorf("%w: paypal: %v", domain.ErrUpstream, err)
		}
		return &dto.OrderResponse{Gateway: in.Gateway, OrderID: orderID, Amount: in.Amount, Currency: "USD"}, nil
	}
	return nil, domain.ErrInvalidGateway
}

// Verify confirma el pago contra el proveedor y acredita las horas. El alta
// del registro y el abono van en la misma transacción: un duplicado aborta
// por el índice único sin acreditar dos veces.
func (uc *PaymentUseCase) Verify(ctx context.Context, userID string, in dto.VerifyPaymentRequest) (*dto.PaymentResponse, error) {
	if !in.Hours.IsPositive() {
		return nil, fmt.Errorf("%w: las horas deben ser mayores que cero", domain.ErrInvalidInput)
	}

	p := &entity.Payment{
		ID:             uuid.NewString(),
		UserID:         userID,
		Gateway:        in.Gateway,
		Amount:         in.Amount,
		HoursPurchased: in.Hours,
		Status:         entity.PaymentSuccess,
		PaymentDate:    time.Now(),
	}

	switch in.Gateway {
	case entity.GatewayRazorpay:
		if in.RazorpayOrderID == "" || in.RazorpayPaymentID == "" {
			return nil, fmt.Errorf("%w: faltan identificadores de razorpay", domain.ErrInvalidInput)
		}
		if !uc.validSignature(in.RazorpayOrderID, in.RazorpayPaymentID, in.RazorpaySignature) {
			return nil, domain.ErrInvalidSignature
		}
		p.OrderRef = in.RazorpayOrderID
		p.PaymentRef = in.RazorpayPaymentID
		p.Signature = in.RazorpaySignature
		p.Currency = "INR"

	case entity.GatewayPaypal:
		if in.PaypalOrderID == "" {
			return nil, fmt.Errorf("%w: falta el order id de paypal", domain.ErrInvalidInput)
		}
		status, err := uc.paypal.CaptureOrder(ctx, in.PaypalOrderID)
		if err != nil {
			return nil, fmt.Errorf("%w: paypal: %v", domain.ErrUpstream, err)
		}
		if status != "COMPLETED" {
			return nil, fmt.Errorf("%w: captura en estado %s", domain.ErrPaymentIncomplete, status)
		}
		p.OrderRef = in.PaypalOrderID
		p.Currency = "USD"

	default:
		return nil, domain.ErrInvalidGateway
	}

	err := uc.tx.RunCredit(ctx, func(payments repository.PaymentRepository, users repository.UserRepository) error {
		if err := payments.Create(p); err != nil {
			return err
		}
		return users.CreditHours(userID, in.Hours)
	})
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponse(p), nil
}

// validSignature recalcula el HMAC-SHA256 de "orderId|paymentId" con el
// secret de razorpay y lo compara en tiempo constante.
func (uc *PaymentUseCase) validSignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(uc.razorpaySecret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// History lista los pagos del usuario, más reciente primero.
func (uc *PaymentUseCase) History(userID string) ([]*dto.PaymentResponse, error) {
	list, err := uc.paymentRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponses(list), nil
}

// Get devuelve un pago si el solicitante es su dueño o un admin.
func (uc *PaymentUseCase) Get(actorID, actorRole, paymentID string) (*dto.PaymentResponse, error) {
	p, err := uc.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if p.UserID != actorID && actorRole != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return dto.NewPaymentResponse(p), nil
}

// CreatePurchaseOrder registra una orden de compra pendiente y la vincula a
// la cotización. No acredita horas: eso ocurre fuera del sistema cuando el
// admin aprueba la orden.
func (uc *PaymentUseCase) CreatePurchaseOrder(actorID string, in dto.PurchaseOrderRequest, doc upload.File) (*dto.PaymentResponse, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el monto debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if !in.Hours.IsPositive() {
		return nil, fmt.Errorf("%w: las horas deben ser mayores que cero", domain.ErrInvalidInput)
	}
	if in.QuotationID == "" {
		return nil, fmt.Errorf("%w: falta la cotización", domain.ErrInvalidInput)
	}

	q, err := uc.quotationRepo.GetByID(in.QuotationID)
	if err != nil {
		return nil, err
	}
	if q.UserID != actorID {
		return nil, domain.ErrForbidden
	}

	stored, err := upload.Store(uc.store, doc, upload.PurchaseOrderDocument, time.Now())
	if err != nil {
		return nil, err
	}

	p := &entity.Payment{
		ID:                uuid.NewString(),
		UserID:            actorID,
		QuotationID:       &q.ID,
		Gateway:           entity.GatewayPurchaseOrder,
		Amount:            in.Amount,
		Currency:          "INR",
		HoursPurchased:    in.Hours,
		Status:            entity.PaymentPending,
		PaymentDate:       time.Now(),
		PurchaseOrderFile: stored,
	}
	if err := uc.paymentRepo.Create(p); err != nil {
		if rmErr := uc.store.Remove(stored.Path); rmErr != nil {
			uc.log.Warn().Err(rmErr).Str("path", stored.Path).Msg("no se pudo limpiar el documento de la orden de compra")
		}
		return nil, err
	}

	q.PaymentID = &p.ID
	q.POStatus = entity.POStatusRequested
	if err := uc.quotationRepo.Update(q); err != nil {
		return nil, err
	}
	return dto.NewPaymentResponse(p), nil
}

// Receipt genera el comprobante PDF de un pago para su dueño (o un admin).
func (uc *PaymentUseCase) Receipt(actorID, actorRole, paymentID string) ([]byte, error) {
	p, err := uc.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if p.UserID != actorID && actorRole != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	owner, err := uc.userRepo.GetByID(p.UserID)
	if err != nil {
		return nil, err
	}
	return uc.receipts.GenerateReceipt(p, owner)
}
