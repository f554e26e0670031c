package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/blob"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type sentMail struct {
	template string
	to       string
	temp     string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) SendWelcome(_ context.Context, u models.User, temp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{"welcome", u.Email, temp})
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, u models.User, temp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{"password_reset", u.Email, temp})
	return nil
}

type fakeEvents struct {
	mu    sync.Mutex
	types []string
	err   error
}

func (f *fakeEvents) PublishEvent(_ context.Context, _, _, eventType string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = append(f.types, eventType)
	return f.err
}

type fakeGateway struct {
	amount   int64
	currency string
	meta     map[string]string
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, amount int64, currency string, meta map[string]string) (payment.Intent, error) {
	g.amount, g.currency, g.meta = amount, currency, meta
	return payment.Intent{ID: "pi_1", ClientSecret: "pi_1_secret", Amount: amount, Currency: currency}, nil
}

type fakeBlob struct {
	uploaded []string
}

func (b *fakeBlob) Upload(_ context.Context, name string, _ io.Reader) (blob.File, error) {
	b.uploaded = append(b.uploaded, name)
	return blob.File{URL: "https://cdn/" + name, PublicID: "shop/" + name}, nil
}

func (b *fakeBlob) Delete(_ context.Context, id string) error {
	if id == "missing" {
		return blob.ErrNotFound
	}
	return nil
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, token string) (tokens.ExternalProfile, error) {
	switch token {
	case "good-new":
		return tokens.ExternalProfile{Email: "new.google@mail.io", DisplayName: "Grace Hopper"}, nil
	case "good-existing":
		return tokens.ExternalProfile{Email: "existing@mail.io", DisplayName: "Existing"}, nil
	case "good-disabled":
		return tokens.ExternalProfile{Email: "disabled@mail.io", DisplayName: "Disabled"}, nil
	}
	return tokens.ExternalProfile{}, errors.New("bad token")
}

type testEnv struct {
	DB       *gorm.DB
	Repo     *repo.GormRepo
	Tokens   *tokens.Service
	Hasher   *hash.Hasher
	Mailer   *fakeMailer
	Events   *fakeEvents
	Gateway  *fakeGateway
	Blob     *fakeBlob
	Users    *UserService
	Cats     *CategoryService
	Products *ProductService
	Orders   *OrderService
	Files    *FileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	r := repo.New(db)
	ts := tokens.NewService([]byte("access-secret"), []byte("refresh-secret"), 15*time.Minute, 24*time.Hour)
	ts.RegisterVerifier("google", fakeVerifier{})

	env := &testEnv{
		DB:      db,
		Repo:    r,
		Tokens:  ts,
		Hasher:  hash.New(bcrypt.MinCost),
		Mailer:  &fakeMailer{},
		Events:  &fakeEvents{},
		Gateway: &fakeGateway{},
		Blob:    &fakeBlob{},
	}
	fx := SideEffects{Timeout: time.Second}
	env.Users = &UserService{
		Users: r, Hasher: env.Hasher, Tokens: ts, Mailer: env.Mailer, Events: env.Events, Effects: fx,
		IsAdminEmail: func(e string) bool { return e == "admin@mail.com" },
	}
	env.Cats = &CategoryService{Categories: r}
	env.Products = &ProductService{Products: r, Categories: r, Events: env.Events, Effects: fx}
	env.Orders = &OrderService{Orders: r, Products: r, Payments: env.Gateway, Events: env.Events, Effects: fx, Currency: "eur"}
	env.Files = &FileService{Store: env.Blob, MaxBytes: 1024}
	return env
}

func (e *testEnv) user(t *testing.T, email string, role models.Role, active bool) (*models.User, tokens.Identity) {
	t.Helper()
	h, err := e.Hasher.Hash("password1")
	require.NoError(t, err)
	u := &models.User{Email: email, PasswordHash: h, Role: role, Active: true}
	require.NoError(t, e.Repo.CreateUser(context.Background(), u))
	if !active {
		u.Active = false
		require.NoError(t, e.Repo.SaveUser(context.Background(), u))
	}
	return u, tokens.Identity{UserID: u.ID, Role: string(role)}
}

func (e *testEnv) category(t *testing.T, title string) models.Category {
	t.Helper()
	c := models.Category{Title: title}
	require.NoError(t, e.Repo.CreateCategory(context.Background(), &c))
	return c
}

func (e *testEnv) product(t *testing.T, title string, price float64, cat uuid.UUID) models.Product {
	t.Helper()
	p := models.Product{Title: title, Price: price, Description: "desc", CategoryID: cat}
	require.NoError(t, e.Repo.CreateProduct(context.Background(), &p))
	return p
}
