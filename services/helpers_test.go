package services

import (
	"context"
	"testing"
	"time"

	"rxvision_server/stores"
	"rxvision_server/stores/memory"
	"rxvision_server/structs"
	"rxvision_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/resend/resend-go/v3"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	args := m.Called(params)
	resp, _ := args.Get(0).(*resend.SendEmailResponse)
	return resp, args.Error(1)
}

func testConfig() *structs.Config {
	return &structs.Config{
		Server: &structs.ServerConfig{
			AppName:       "RxVision",
			Environment:   "test",
			PublicBaseURL: "https://rx.example",
			FrontendURL:   "https://app.rx.example",
		},
		Cors:     &structs.CorsConfig{},
		Database: &structs.DatabaseConfig{Driver: "memory"},
		Auth: &structs.AuthConfig{
			SessionSecret:          "test-secret",
			SessionMaxAge:          24 * time.Hour,
			VerificationTokenTTL:   24 * time.Hour,
			ResetTokenTTL:          time.Hour,
			CacheUserTTL:           time.Minute,
			BlacklistCacheTTL:      time.Hour,
			VerificationResendWait: time.Minute,
		},
		Email: &structs.EmailConfig{
			From:         "RxVision <onboarding@resend.dev>",
			SupportEmail: "support@rx.example",
		},
		Cache:     &structs.CacheConfig{Enabled: false},
		RateLimit: &structs.RateLimitConfig{Enabled: false},
	}
}

type fixture struct {
	cfg    *structs.Config
	store  *memory.Store
	set    *stores.Set
	sender *mockSender
	svc    *ServiceManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := testConfig()
	store := memory.New()
	set := store.Set()
	sender := &mockSender{}

	return &fixture{
		cfg:    cfg,
		store:  store,
		set:    set,
		sender: sender,
		svc:    NewServiceManager(gecho.NewDefaultLogger(), cfg, set, nil, sender),
	}
}

// expectMail accepts any number of outgoing emails
func (f *fixture) expectMail() {
	f.sender.On("Send", mock.Anything).Return(&resend.SendEmailResponse{Id: "email_123"}, nil)
}

func (f *fixture) register(t *testing.T, email, password string) *tables.User {
	t.Helper()
	user, err := f.svc.UserService.CreateUser(context.Background(), &structs.CreateUserRequest{
		Email:     email,
		Password:  password,
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	return user
}

// storedUser reads the raw stored user, bypassing sanitization
func (f *fixture) storedUser(t *testing.T, email string) *tables.User {
	t.Helper()
	user, err := f.set.Users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return user
}
