package quotation

import (
	"context"
	"errors"
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

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

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
func (r *fakeUserRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}
func (r *fakeUserRepo) GetByVerificationCode(code string) (*entity.User, error) {
	for _, u := range r.users {
		if u.VerificationCode == code && code != "" {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}
func (r *fakeUserRepo) Update(u *entity.User) error { r.users[u.ID] = u; return nil }
func (r *fakeUserRepo) List(limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}
func (r *fakeUserRepo) Count() (int, error) { return len(r.users), nil }
func (r *fakeUserRepo) Delete(id string) error {
	delete(r.users, id)
	return nil
}
func (r *fakeUserRepo) ListAdmins() ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		if u.Role == entity.RoleAdmin {
			out = append(out, u)
		}
	}
	return out, nil
}

// DebitHours imita el UPDATE condicional: solo descuenta si el saldo alcanza.
func (r *fakeUserRepo) DebitHours(userID string, hours decimal.Decimal) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.HoursBalance.LessThan(hours) {
		return domain.ErrInsufficientHours
	}
	u.HoursBalance = u.HoursBalance.Sub(hours)
	return nil
}

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
	createErr  error
}

func newFakeQuotationRepo(qs ...*entity.Quotation) *fakeQuotationRepo {
	r := &fakeQuotationRepo{quotations: map[string]*entity.Quotation{}}
	for _, q := range qs {
		r.quotations[q.ID] = q
	}
	return r
}

func (r *fakeQuotationRepo) Create(q *entity.Quotation) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.quotations[q.ID] = q
	return nil
}
func (r *fakeQuotationRepo) GetByID(id string) (*entity.Quotation, error) {
	q, ok := r.quotations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *q
	return &cp, nil
}
func (r *fakeQuotationRepo) GetByIDForUpdate(id string) (*entity.Quotation, error) {
	return r.GetByID(id)
}
func (r *fakeQuotationRepo) Update(q *entity.Quotation) error {
	if _, ok := r.quotations[q.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *q
	r.quotations[q.ID] = &cp
	return nil
}
func (r *fakeQuotationRepo) List() ([]*entity.Quotation, error) {
	var out []*entity.Quotation
	for _, q := range r.quotations {
		out = append(out, q)
	}
	return out, nil
}
func (r *fakeQuotationRepo) ListByUser(userID string) ([]*entity.Quotation, error) {
	var out []*entity.Quotation
	for _, q := range r.quotations {
		if q.UserID == userID {
			out = append(out, q)
		}
	}
	return out, nil
}
func (r *fakeQuotationRepo) Delete(id string) error {
	if _, ok := r.quotations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.quotations, id)
	return nil
}

type fakeNotifRepo struct {
	created []*entity.Notification
}

func (r *fakeNotifRepo) Create(n *entity.Notification) error {
	r.created = append(r.created, n)
	return nil
}
func (r *fakeNotifRepo) GetByID(id string) (*entity.Notification, error) {
	return nil, domain.ErrNotFound
}
func (r *fakeNotifRepo) ListByUser(userID string) ([]*entity.Notification, error) { return nil, nil }
func (r *fakeNotifRepo) MarkRead(id string) error                                 { return nil }
func (r *fakeNotifRepo) Delete(id string) error                                   { return nil }

// fakeTxRunner ejecuta el callback directamente sobre los fakes.
type fakeTxRunner struct {
	users      repository.UserRepository
	quotations repository.QuotationRepository
}

func (t *fakeTxRunner) RunDecision(ctx context.Context, fn func(
	users repository.UserRepository,
	quotations repository.QuotationRepository,
) error) error {
	return fn(t.users, t.quotations)
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

type fakeMailer struct {
	sent []string // nombres de plantilla
}

func (m *fakeMailer) Send(to []string, subject, template string, data map[string]any) error {
	m.sent = append(m.sent, template)
	return nil
}

type fakePublisher struct {
	published []string // eventos
}

func (p *fakePublisher) Publish(userID, event string, payload any) {
	p.published = append(p.published, event)
}
func (p *fakePublisher) Broadcast(event string, payload any) {
	p.published = append(p.published, event)
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc        *QuotationUseCase
	users     *fakeUserRepo
	quotes    *fakeQuotationRepo
	notifs    *fakeNotifRepo
	store     *fakeStore
	mailer    *fakeMailer
	publisher *fakePublisher
}

func newFixture(t *testing.T, users *fakeUserRepo, quotes *fakeQuotationRepo) *fixture {
	t.Helper()
	f := &fixture{
		users:     users,
		quotes:    quotes,
		notifs:    &fakeNotifRepo{},
		store:     &fakeStore{},
		mailer:    &fakeMailer{},
		publisher: &fakePublisher{},
	}
	tx := &fakeTxRunner{users: users, quotations: quotes}
	f.uc = NewQuotationUseCase(
		quotes, users, f.notifs, tx, f.store, f.mailer, f.publisher,
		logger.Nop(), "http://localhost:3000", "support@test.io",
	)
	return f
}

func testUser(id, role string, balance int64) *entity.User {
	return &entity.User{
		ID:           id,
		Name:         "Juana",
		Email:        id + "@x.com",
		Role:         role,
		HoursBalance: decimal.NewFromInt(balance),
		IsVerified:   true,
	}
}

func quotedQuotation(id, userID string, hours int64) *entity.Quotation {
	return &entity.Quotation{
		ID:           id,
		UserID:       userID,
		ProjectName:  "Engranaje",
		Description:  "Pieza de repuesto",
		RequiredHour: decimal.NullDecimal{Decimal: decimal.NewFromInt(hours), Valid: true},
		File:         entity.StoredFile{Path: "/uploads/2026/8/1/engranaje_1.stl", Type: "STL", Size: 100},
		Status:       entity.StatusQuoted,
	}
}

func stlFile(name string) upload.File {
	return upload.File{
		Name:        name,
		Size:        2048,
		ContentType: "application/octet-stream",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("solid cube")), nil
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Request
// ──────────────────────────────────────────────────────────────────────────────

func TestRequest_CreaCotizacionConArchivo(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 4)
	admin := testUser("a1", entity.RoleAdmin, 0)
	f := newFixture(t, newFakeUserRepo(owner, admin), newFakeQuotationRepo())

	out, err := f.uc.Request(owner, dto.CreateQuotationRequest{
		ProjectName: "Engranaje",
		Description: "Pieza de repuesto",
	}, stlFile("Engranaje V2.stl"))

	require.NoError(t, err)
	assert.Equal(t, entity.StatusRequested, out.Status)
	assert.Equal(t, "STL", out.FileType)
	require.Len(t, f.store.saved, 1)
	assert.Contains(t, f.store.saved[0], "/uploads/")
	assert.Contains(t, f.store.saved[0], "engranaje_v2_")
	// fan-out: notificación persistida por admin + eventos
	assert.Len(t, f.notifs.created, 1)
	assert.Contains(t, f.publisher.published, "quotation:requested")
}

func TestRequest_ExtensionExeRechazadaSinEscrituras(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 4)
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo())

	_, err := f.uc.Request(owner, dto.CreateQuotationRequest{
		ProjectName: "Malicia",
		Description: "x",
	}, stlFile("virus.exe"))

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	// Nada tocó el almacenamiento ni la base
	assert.Empty(t, f.store.saved)
	assert.Empty(t, f.quotes.quotations)
}

func TestRequest_FalloDePersistenciaLimpiaElArchivo(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 4)
	quotes := newFakeQuotationRepo()
	quotes.createErr = errors.New("db caída")
	f := newFixture(t, newFakeUserRepo(owner), quotes)

	_, err := f.uc.Request(owner, dto.CreateQuotationRequest{
		ProjectName: "Engranaje",
		Description: "x",
	}, stlFile("pieza.stl"))

	require.Error(t, err)
	require.Len(t, f.store.saved, 1)
	assert.Equal(t, f.store.saved, f.store.removed, "el archivo huérfano debe eliminarse")
}

// ──────────────────────────────────────────────────────────────────────────────
// RaiseQuote / UpdateRequiredHour
// ──────────────────────────────────────────────────────────────────────────────

func TestRaiseQuote_FijaHorasYPasaAQuoted(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 4)
	q := quotedQuotation("q1", "u1", 5)
	q.Status = entity.StatusRequested
	q.RequiredHour = decimal.NullDecimal{}
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(q))

	out, err := f.uc.RaiseQuote("q1", decimal.NewFromInt(5))

	require.NoError(t, err)
	assert.Equal(t, entity.StatusQuoted, out.Status)
	require.NotNil(t, out.RequiredHour)
	assert.True(t, out.RequiredHour.Equal(decimal.NewFromInt(5)))
	assert.Contains(t, f.publisher.published, "quotation:raised")
}

func TestRaiseQuote_HorasNoPositivasRechazadas(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 4)
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(quotedQuotation("q1", "u1", 5)))

	_, err := f.uc.RaiseQuote("q1", decimal.Zero)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Decision
// ──────────────────────────────────────────────────────────────────────────────

func TestDecision_AprobarSinSaldoFallaYNoCambiaNada(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 4) // saldo 4 < 5 requeridas
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(quotedQuotation("q1", "u1", 5)))

	_, err := f.uc.Decision(context.Background(), owner, "q1", entity.StatusApproved)

	require.ErrorIs(t, err, domain.ErrInsufficientHours)
	assert.True(t, owner.HoursBalance.Equal(decimal.NewFromInt(4)), "el saldo no debe cambiar")
	q, _ := f.quotes.GetByID("q1")
	assert.Equal(t, entity.StatusQuoted, q.Status, "el status debe quedar en quoted")
}

func TestDecision_AprobarConSaldoDebitaYEstampaApprovedAt(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 10)
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(quotedQuotation("q1", "u1", 5)))

	out, err := f.uc.Decision(context.Background(), owner, "q1", entity.StatusApproved)

	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, out.Status)
	assert.NotNil(t, out.ApprovedAt)
	assert.True(t, owner.HoursBalance.Equal(decimal.NewFromInt(5)), "10 - 5 = 5")
	assert.Contains(t, f.publisher.published, "quotation:decision")
}

func TestDecision_RechazarNuncaDebita(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 10)
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(quotedQuotation("q1", "u1", 9999)))

	out, err := f.uc.Decision(context.Background(), owner, "q1", entity.StatusRejected)

	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, out.Status)
	assert.Nil(t, out.ApprovedAt)
	assert.True(t, owner.HoursBalance.Equal(decimal.NewFromInt(10)))
}

func TestDecision_YaAprobadaDevuelveConflicto(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 10)
	q := quotedQuotation("q1", "u1", 5)
	q.Status = entity.StatusApproved
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(q))

	_, err := f.uc.Decision(context.Background(), owner, "q1", entity.StatusApproved)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestDecision_NoDuenoProhibido(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 10)
	intruso := testUser("u2", entity.RoleUser, 10)
	f := newFixture(t, newFakeUserRepo(owner, intruso), newFakeQuotationRepo(quotedQuotation("q1", "u1", 5)))

	_, err := f.uc.Decision(context.Background(), intruso, "q1", entity.StatusApproved)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDecision_StatusInvalidoRechazado(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 10)
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(quotedQuotation("q1", "u1", 5)))

	_, err := f.uc.Decision(context.Background(), owner, "q1", "maybe")
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestDecisionPO_AprobarNoTocaElSaldo(t *testing.T) {
	owner := testUser("u1", entity.RoleCompany, 0) // sin saldo
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(quotedQuotation("q1", "u1", 50)))

	out, err := f.uc.DecisionPO(owner, "q1", entity.StatusApproved)

	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, out.Status)
	assert.NotNil(t, out.ApprovedAt)
	assert.True(t, owner.HoursBalance.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Ongoing / Complete / PoStatus / Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkOngoing_SoloDesdeApproved(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 10)
	q := quotedQuotation("q1", "u1", 5) // status quoted
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(q))

	_, err := f.uc.MarkOngoing("q1")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	q2 := quotedQuotation("q2", "u1", 5)
	q2.Status = entity.StatusApproved
	require.NoError(t, f.quotes.Create(q2))

	out, err := f.uc.MarkOngoing("q2")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusOngoing, out.Status)
	assert.NotNil(t, out.StartedAt)
}

func TestComplete_GuardaEntregableYEstampaCompletedAt(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 10)
	q := quotedQuotation("q1", "u1", 5)
	q.Status = entity.StatusOngoing
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(q))

	out, err := f.uc.Complete("q1", stlFile("resultado final.zip"))

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, out.Status)
	assert.NotNil(t, out.CompletedAt)
	require.Len(t, f.store.saved, 1)
	assert.Contains(t, f.store.saved[0], "/completed_files/")
	assert.Contains(t, f.store.saved[0], "completed_resultado_final_")
}

func TestUpdatePoStatus_ValorInvalidoRechazado(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 10)
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(quotedQuotation("q1", "u1", 5)))

	_, err := f.uc.UpdatePoStatus("q1", "whatever")
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	out, err := f.uc.UpdatePoStatus("q1", entity.POStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusApproved, out.PoStatus)
}

func TestUpdate_ReemplazoDeArchivoBorraElAnterior(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 10)
	q := quotedQuotation("q1", "u1", 5)
	oldPath := q.File.Path
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(q))

	file := stlFile("version2.stl")
	out, err := f.uc.Update(owner, "q1", dto.UpdateQuotationRequest{Description: "v2"}, &file)

	require.NoError(t, err)
	assert.Equal(t, "v2", out.Description)
	require.Len(t, f.store.saved, 1)
	assert.Contains(t, f.store.removed, oldPath, "el archivo reemplazado debe borrarse después de guardar el nuevo")
}

func TestDelete_EliminaYLimpiaArchivos(t *testing.T) {
	owner := testUser("u1", entity.RoleUser, 10)
	q := quotedQuotation("q1", "u1", 5)
	q.CompletedFile = entity.StoredFile{Path: "/completed_files/2026/8/1/completed_x.zip", Type: "ZIP", Size: 9}
	f := newFixture(t, newFakeUserRepo(owner), newFakeQuotationRepo(q))

	require.NoError(t, f.uc.Delete("q1"))
	assert.Empty(t, f.quotes.quotations)
	assert.ElementsMatch(t, []string{q.File.Path, q.CompletedFile.Path}, f.store.removed)
}
