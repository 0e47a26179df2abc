package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/application/upload"
	"github.com/makerforge/quote3d-api/internal/domain"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
	"github.com/makerforge/quote3d-api/pkg/logger"
)

const testSecret = "rzp_test_secret"

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakePaymentRepo struct {
	payments map[string]*entity.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[string]*entity.Payment{}}
}

// Create replica el índice único parcial sobre (gateway, orderRef, paymentRef).
func (r *fakePaymentRepo) Create(p *entity.Payment) error {
	if p.Gateway != entity.GatewayPurchaseOrder {
		for _, existing := range r.payments {
			if existing.Gateway == p.Gateway && existing.OrderRef == p.OrderRef && existing.PaymentRef == p.PaymentRef {
				return domain.ErrDuplicatePayment
			}
		}
	}
	r.payments[p.ID] = p
	return nil
}

func (r *fakePaymentRepo) GetByID(id string) (*entity.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *fakePaymentRepo) ListByUser(userID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(u *entity.User) error { r.users[u.ID] = u; return nil }
func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}
func (r *fakeUserRepo) GetByEmail(string) (*entity.User, error) {
	return nil, domain.ErrUserNotFound
}
func (r *fakeUserRepo) GetByVerificationCode(string) (*entity.User, error) {
	return nil, domain.ErrUserNotFound
}
func (r *fakeUserRepo) Update(u *entity.User) error              { r.users[u.ID] = u; return nil }
func (r *fakeUserRepo) List(int, int) ([]*entity.User, error)    { return nil, nil }
func (r *fakeUserRepo) Count() (int, error)                      { return len(r.users), nil }
func (r *fakeUserRepo) Delete(id string) error                   { delete(r.users, id); return nil }
func (r *fakeUserRepo) ListAdmins() ([]*entity.User, error)      { return nil, nil }
func (r *fakeUserRepo) DebitHours(string, decimal.Decimal) error { return nil }

func (r *fakeUserRepo) CreditHours(userID string, hours decimal.Decimal) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.HoursBalance = u.HoursBalance.Add(hours)
	return nil
}

type fakeQuotationRepo struct {
	quotations map[string]*entity.Quotation
}

func newFakeQuotationRepo(qs ...*entity.Quotation) *fakeQuotationRepo {
	r := &fakeQuotationRepo{quotations: map[string]*entity.Quotation{}}
	for _, q := range qs {
		r.quotations[q.ID] = q
	}
	return r
}

func (r *fakeQuotationRepo) Create(q *entity.Quotation) error { r.quotations[q.ID] = q; return nil }
func (r *fakeQuotationRepo) GetByID(id string) (*entity.Quotation, error) {
	q, ok := r.quotations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return q, nil
}
func (r *fakeQuotationRepo) GetByIDForUpdate(id string) (*entity.Quotation, error) {
	return r.GetByID(id)
}
func (r *fakeQuotationRepo) Update(q *entity.Quotation) error {
	r.quotations[q.ID] = q
	return nil
}
func (r *fakeQuotationRepo) List() ([]*entity.Quotation, error)           { return nil, nil }
func (r *fakeQuotationRepo) ListByUser(string) ([]*entity.Quotation, error) { return nil, nil }
func (r *fakeQuotationRepo) Delete(id string) error {
	delete(r.quotations, id)
	return nil
}

// fakeCreditTx ejecuta el callback directamente sobre los fakes.
type fakeCreditTx struct {
	payments repository.PaymentRepository
	users    repository.UserRepository
}

func (t *fakeCreditTx) RunCredit(ctx context.Context, fn func(
	payments repository.PaymentRepository,
	users repository.UserRepository,
) error) error {
	return fn(t.payments, t.users)
}

type fakeRazorpay struct {
	orderID string
	err     error
	calls   int
}

func (g *fakeRazorpay) CreateOrder(amount int64, currency, receipt string) (string, error) {
	g.calls++
	return g.orderID, g.err
}

type fakePaypal struct {
	orderID       string
	captureStatus string
	err           error
}

func (g *fakePaypal) CreateOrder(ctx context.Context, value, currency, description string) (string, error) {
	return g.orderID, g.err
}
func (g *fakePaypal) CaptureOrder(ctx context.Context, orderID string) (string, error) {
	return g.captureStatus, g.err
}

type fakeReceipts struct{}

func (fakeReceipts) GenerateReceipt(p *entity.Payment, owner *entity.User) ([]byte, error) {
	return []byte("%PDF-1.7 " + p.ID + " " + owner.Name), nil
}

type fakeStore struct {
	saved   []string
	removed []string
}

func (s *fakeStore) Save(relPath string, r io.Reader) error {
	s.saved = append(s.saved, relPath)
	return nil
}
func (s *fakeStore) Remove(relPath string) error {
	s.removed = append(s.removed, relPath)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc       *PaymentUseCase
	payments *fakePaymentRepo
	users    *fakeUserRepo
	quotes   *fakeQuotationRepo
	razorpay *fakeRazorpay
	paypal   *fakePaypal
	store    *fakeStore
}

func newFixture(t *testing.T, users *fakeUserRepo, quotes *fakeQuotationRepo) *fixture {
	t.Helper()
	f := &fixture{
		payments: newFakePaymentRepo(),
		users:    users,
		quotes:   quotes,
		razorpay: &fakeRazorpay{orderID: "order_ABC123"},
		paypal:   &fakePaypal{orderID: "PAYPAL-1", captureStatus: "COMPLETED"},
		store:    &fakeStore{},
	}
	tx := &fakeCreditTx{payments: f.payments, users: f.users}
	f.uc = NewPaymentUseCase(
		f.payments, quotes, users, tx, f.razorpay, f.paypal,
		fakeReceipts{}, f.store, testSecret, logger.Nop(),
	)
	return f
}

func buyer(balance int64) *entity.User {
	return &entity.User{
		ID:           "u1",
		Name:         "Marta",
		Email:        "marta@x.com",
		Role:         entity.RoleUser,
		HoursBalance: decimal.NewFromInt(balance),
		IsVerified:   true,
	}
}

func signFor(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	return hex.EncodeToString(mac.Sum(nil))
}

func pdfDoc(name string) upload.File {
	return upload.File{
		Name:        name,
		Size:        4096,
		ContentType: "application/pdf",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("%PDF-1.4")), nil
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateOrder
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_RazorpayEnINR(t *testing.T) {
	f := newFixture(t, newFakeUserRepo(buyer(4)), newFakeQuotationRepo())

	out, err := f.uc.CreateOrder(context.Background(), dto.CreateOrderRequest{
		Amount:  50000, // ₹500.00 en paise
		Hours:   decimal.NewFromInt(5),
		Gateway: entity.GatewayRazorpay,
	})

	require.NoError(t, err)
	assert.Equal(t, "order_ABC123", out.OrderID)
	assert.Equal(t, "INR", out.Currency)
	assert.Equal(t, int64(50000), out.Amount)
	assert.Equal(t, 1, f.razorpay.calls)
}

func TestCreateOrder_MontoNoPositivoRechazado(t *testing.T) {
	f := newFixture(t, newFakeUserRepo(buyer(4)), newFakeQuotationRepo())

	_, err := f.uc.CreateOrder(context.Background(), dto.CreateOrderRequest{
		Amount:  0,
		Hours:   decimal.NewFromInt(5),
		Gateway: entity.GatewayRazorpay,
	})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.razorpay.calls)
}

func TestCreateOrder_PasarelaDesconocida(t *testing.T) {
	f := newFixture(t, newFakeUserRepo(buyer(4)), newFakeQuotationRepo())

	_, err := f.uc.CreateOrder(context.Background(), dto.CreateOrderRequest{
		Amount:  50000,
		Hours:   decimal.NewFromInt(5),
		Gateway: "stripe",
	})
	require.ErrorIs(t, err, domain.ErrInvalidGateway)
}

func TestCreateOrder_FalloDeRazorpayEsUpstream(t *testing.T) {
	f := newFixture(t, newFakeUserRepo(buyer(4)), newFakeQuotationRepo())
	f.razorpay.err = errors.New("BAD_REQUEST_ERROR")

	_, err := f.uc.CreateOrder(context.Background(), dto.CreateOrderRequest{
		Amount:  50000,
		Hours:   decimal.NewFromInt(5),
		Gateway: entity.GatewayRazorpay,
	})
	require.ErrorIs(t, err, domain.ErrUpstream)
}

// ──────────────────────────────────────────────────────────────────────────────
// Verify
// ──────────────────────────────────────────────────────────────────────────────

func razorpayVerify(orderID, paymentID string) dto.VerifyPaymentRequest {
	return dto.VerifyPaymentRequest{
		Gateway:           entity.GatewayRazorpay,
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: signFor(orderID, paymentID),
		Amount:            decimal.NewFromInt(50000),
		Hours:             decimal.NewFromInt(5),
	}
}

func TestVerify_FirmaValidaAcreditaHoras(t *testing.T) {
	u := buyer(4)
	f := newFixture(t, newFakeUserRepo(u), newFakeQuotationRepo())

	out, err := f.uc.Verify(context.Background(), u.ID, razorpayVerify("order_1", "pay_1"))

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentSuccess, out.Status)
	assert.Equal(t, "INR", out.Currency)
	assert.True(t, u.HoursBalance.Equal(decimal.NewFromInt(9)), "4 + 5 = 9")
	assert.Len(t, f.payments.payments, 1)
}

func TestVerify_FirmaAdulteradaNoAcreditaNada(t *testing.T) {
	u := buyer(4)
	f := newFixture(t, newFakeUserRepo(u), newFakeQuotationRepo())

	in := razorpayVerify("order_1", "pay_1")
	in.RazorpaySignature = signFor("order_1", "pay_OTRO")

	_, err := f.uc.Verify(context.Background(), u.ID, in)

	require.ErrorIs(t, err, domain.ErrInvalidSignature)
	assert.True(t, u.HoursBalance.Equal(decimal.NewFromInt(4)), "el saldo no debe cambiar")
	assert.Empty(t, f.payments.payments)
}

func TestVerify_ReintentoDelMismoPagoAcreditaUnaSolaVez(t *testing.T) {
	u := buyer(4)
	f := newFixture(t, newFakeUserRepo(u), newFakeQuotationRepo())

	_, err := f.uc.Verify(context.Background(), u.ID, razorpayVerify("order_1", "pay_1"))
	require.NoError(t, err)

	_, err = f.uc.Verify(context.Background(), u.ID, razorpayVerify("order_1", "pay_1"))
	require.ErrorIs(t, err, domain.ErrDuplicatePayment)

	assert.True(t, u.HoursBalance.Equal(decimal.NewFromInt(9)), "solo el primer intento acredita")
	assert.Len(t, f.payments.payments, 1)
}

func TestVerify_PaypalCapturaIncompleta(t *testing.T) {
	u := buyer(4)
	f := newFixture(t, newFakeUserRepo(u), newFakeQuotationRepo())
	f.paypal.captureStatus = "PENDING"

	_, err := f.uc.Verify(context.Background(), u.ID, dto.VerifyPaymentRequest{
		Gateway:       entity.GatewayPaypal,
		PaypalOrderID: "PAYPAL-1",
		Amount:        decimal.NewFromInt(2500),
		Hours:         decimal.NewFromInt(2),
	})

	require.ErrorIs(t, err, domain.ErrPaymentIncomplete)
	assert.True(t, u.HoursBalance.Equal(decimal.NewFromInt(4)))
	assert.Empty(t, f.payments.payments)
}

func TestVerify_PaypalCompletadaAcredita(t *testing.T) {
	u := buyer(0)
	f := newFixture(t, newFakeUserRepo(u), newFakeQuotationRepo())

	out, err := f.uc.Verify(context.Background(), u.ID, dto.VerifyPaymentRequest{
		Gateway:       entity.GatewayPaypal,
		PaypalOrderID: "PAYPAL-1",
		Amount:        decimal.NewFromInt(2500),
		Hours:         decimal.NewFromInt(2),
	})

	require.NoError(t, err)
	assert.Equal(t, "USD", out.Currency)
	assert.True(t, u.HoursBalance.Equal(decimal.NewFromInt(2)))
}

func TestVerify_PasarelaDesconocida(t *testing.T) {
	u := buyer(4)
	f := newFixture(t, newFakeUserRepo(u), newFakeQuotationRepo())

	_, err := f.uc.Verify(context.Background(), u.ID, dto.VerifyPaymentRequest{
		Gateway: "cash",
		Hours:   decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, domain.ErrInvalidGateway)
}

// ──────────────────────────────────────────────────────────────────────────────
// CreatePurchaseOrder
// ──────────────────────────────────────────────────────────────────────────────

func TestCreatePurchaseOrder_VinculaPagoYSubEstado(t *testing.T) {
	u := buyer(0)
	q := &entity.Quotation{ID: "q1", UserID: u.ID, ProjectName: "Engranaje", Status: entity.StatusQuoted}
	f := newFixture(t, newFakeUserRepo(u), newFakeQuotationRepo(q))

	out, err := f.uc.CreatePurchaseOrder(u.ID, dto.PurchaseOrderRequest{
		Amount:      decimal.NewFromInt(120000),
		Hours:       decimal.NewFromInt(12),
		QuotationID: "q1",
	}, pdfDoc("orden de compra.pdf"))

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPending, out.Status)
	assert.Equal(t, entity.GatewayPurchaseOrder, out.Gateway)
	assert.Contains(t, out.PurchaseOrderFile, "/uploads/purchase_orders/")
	// las horas NO se acreditan en este flujo
	assert.True(t, u.HoursBalance.IsZero())
	// la cotización quedó vinculada
	got, _ := f.quotes.GetByID("q1")
	require.NotNil(t, got.PaymentID)
	assert.Equal(t, out.ID, *got.PaymentID)
	assert.Equal(t, entity.POStatusRequested, got.POStatus)
}

func TestCreatePurchaseOrder_CotizacionAjenaProhibida(t *testing.T) {
	u := buyer(0)
	q := &entity.Quotation{ID: "q1", UserID: "otro", Status: entity.StatusQuoted}
	f := newFixture(t, newFakeUserRepo(u), newFakeQuotationRepo(q))

	_, err := f.uc.CreatePurchaseOrder(u.ID, dto.PurchaseOrderRequest{
		Amount:      decimal.NewFromInt(1000),
		Hours:       decimal.NewFromInt(1),
		QuotationID: "q1",
	}, pdfDoc("po.pdf"))

	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, f.store.saved, "el documento no debe guardarse")
}

func TestCreatePurchaseOrder_DocumentoExeRechazado(t *testing.T) {
	u := buyer(0)
	q := &entity.Quotation{ID: "q1", UserID: u.ID, Status: entity.StatusQuoted}
	f := newFixture(t, newFakeUserRepo(u), newFakeQuotationRepo(q))

	doc := pdfDoc("po.exe")
	_, err := f.uc.CreatePurchaseOrder(u.ID, dto.PurchaseOrderRequest{
		Amount:      decimal.NewFromInt(1000),
		Hours:       decimal.NewFromInt(1),
		QuotationID: "q1",
	}, doc)

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.payments.payments)
}

// ──────────────────────────────────────────────────────────────────────────────
// Get / Receipt
// ──────────────────────────────────────────────────────────────────────────────

func TestGet_SoloDuenoOAdmin(t *testing.T) {
	u := buyer(4)
	f := newFixture(t, newFakeUserRepo(u), newFakeQuotationRepo())
	out, err := f.uc.Verify(context.Background(), u.ID, razorpayVerify("order_1", "pay_1"))
	require.NoError(t, err)

	_, err = f.uc.Get(u.ID, entity.RoleUser, out.ID)
	assert.NoError(t, err)

	_, err = f.uc.Get("intruso", entity.RoleUser, out.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Get("admin", entity.RoleAdmin, out.ID)
	assert.NoError(t, err)
}

func TestReceipt_GeneraPDFParaElDueno(t *testing.T) {
	u := buyer(4)
	f := newFixture(t, newFakeUserRepo(u), newFakeQuotationRepo())
	out, err := f.uc.Verify(context.Background(), u.ID, razorpayVerify("order_1", "pay_1"))
	require.NoError(t, err)

	pdf, err := f.uc.Receipt(u.ID, entity.RoleUser, out.ID)
	require.NoError(t, err)
	assert.Contains(t, string(pdf), "%PDF")

	_, err = f.uc.Receipt("intruso", entity.RoleUser, out.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
