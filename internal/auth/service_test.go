package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/auth"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*auth.Service, *auth.MockRepository, *auth.MockMailer) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := auth.NewMockRepository(ctrl)
	mailer := auth.NewMockMailer(ctrl)

	svc := auth.NewService(repo, auth.NewTokens("test-secret", time.Hour, 30*time.Minute), mailer,
		auth.WithClock(func() time.Time { return now }),
		auth.WithCost(bcrypt.MinCost),
	)

	return svc, repo, mailer
}

func hashed(t *testing.T, password string) string {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(h)
}

func TestService_SignUp(t *testing.T) {
	type testCase struct {
		name      string
		params    auth.SignUpParams
		setupMock func(m *auth.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: auth.SignUpParams{Email: "  Compras@Mercadinho.com ", Name: "Mercadinho", Password: "segredo123"},
			setupMock: func(m *auth.MockRepository) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *auth.User) error {
						assert.Equal(t, "compras@mercadinho.com", u.Email)
						assert.Equal(t, identity.RoleClient, u.Role)
						assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("segredo123")))
						u.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name:    "BadEmail",
			params:  auth.SignUpParams{Email: "not-an-email", Name: "X", Password: "segredo123"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "ShortPassword",
			params:  auth.SignUpParams{Email: "a@b.com", Name: "X", Password: "1234567"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "LongPassword",
			params:  auth.SignUpParams{Email: "a@b.com", Name: "X", Password: strings.Repeat("a", 73)},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "NoName",
			params:  auth.SignUpParams{Email: "a@b.com", Password: "segredo123"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:   "EmailTaken",
			params: auth.SignUpParams{Email: "a@b.com", Name: "X", Password: "segredo123"},
			setupMock: func(m *auth.MockRepository) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(apperr.ErrConflict)
			},
			wantErr: apperr.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := svc.SignUp(context.Background(), tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, got.Token)

			caller, err := svc.Authenticate(context.Background(), got.Token)
			require.NoError(t, err)
			assert.Equal(t, got.User.ID, caller.ID)
		})
	}
}

func TestService_SignIn(t *testing.T) {
	u := &auth.User{ID: uuid.New(), Email: "ana@atacadao.com", Name: "Ana", Role: identity.RoleManager}
	u.PasswordHash = hashed(t, "correct-horse")

	t.Run("Success", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), "ana@atacadao.com").Return(u, nil)

		s, err := svc.SignIn(context.Background(), "ANA@atacadao.com", "correct-horse")
		require.NoError(t, err)

		caller, err := svc.Authenticate(context.Background(), s.Token)
		require.NoError(t, err)
		assert.True(t, caller.IsManager())
		assert.True(t, caller.Fresh(now, time.Minute))
	})

	t.Run("WrongPassword", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(u, nil)

		_, err := svc.SignIn(context.Background(), u.Email, "wrong")
		assert.ErrorIs(t, err, auth.ErrInvalidCredential)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(nil, apperr.ErrNotFound)

		_, err := svc.SignIn(context.Background(), "nobody@x.com", "whatever1")
		assert.ErrorIs(t, err, auth.ErrInvalidCredential)
	})
}

func TestService_CreateUser(t *testing.T) {
	manager := identity.Caller{ID: uuid.New(), Role: identity.RoleManager}
	params := auth.CreateUserParams{
		SignUpParams: auth.SignUpParams{Email: "vendedor@atacadao.com", Name: "Vendedor", Password: "segredo123"},
		Role:         identity.RoleSeller,
	}

	t.Run("Manager", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil)

		u, err := svc.CreateUser(context.Background(), manager, params)
		require.NoError(t, err)
		assert.Equal(t, identity.RoleSeller, u.Role)
	})

	t.Run("Seller", func(t *testing.T) {
		svc, _, _ := newService(t)

		_, err := svc.CreateUser(context.Background(), identity.Caller{ID: uuid.New(), Role: identity.RoleSeller}, params)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("BadRole", func(t *testing.T) {
		svc, _, _ := newService(t)
		bad := params
		bad.Role = "admin"

		_, err := svc.CreateUser(context.Background(), manager, bad)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestService_ChangePassword(t *testing.T) {
	id := uuid.New()

	t.Run("Fresh", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().UpdatePassword(gomock.Any(), id, gomock.Any()).Return(nil)

		err := svc.ChangePassword(context.Background(), identity.Caller{ID: id, AuthenticatedAt: now.Add(-time.Minute)}, "nova-senha-1")
		assert.NoError(t, err)
	})

	t.Run("Stale", func(t *testing.T) {
		svc, _, _ := newService(t)

		err := svc.ChangePassword(context.Background(), identity.Caller{ID: id, AuthenticatedAt: now.Add(-time.Hour)}, "nova-senha-1")
		assert.ErrorIs(t, err, apperr.ErrReauthRequired)
	})
}

func TestService_Reauthenticate(t *testing.T) {
	u := &auth.User{ID: uuid.New(), Email: "a@b.com", Role: identity.RoleManager, PasswordHash: hashed(t, "segredo123")}
	caller := identity.Caller{ID: u.ID, Role: identity.RoleManager, AuthenticatedAt: now.Add(-time.Hour)}

	svc, repo, _ := newService(t)
	repo.EXPECT().GetUser(gomock.Any(), u.ID).Return(u, nil).Times(2)

	_, err := svc.Reauthenticate(context.Background(), caller, "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)

	s, err := svc.Reauthenticate(context.Background(), caller, "segredo123")
	require.NoError(t, err)

	fresh, err := svc.Authenticate(context.Background(), s.Token)
	require.NoError(t, err)
	assert.True(t, fresh.Fresh(now, time.Minute))
}

func TestService_PasswordReset(t *testing.T) {
	u := &auth.User{ID: uuid.New(), Email: "a@b.com", Role: identity.RoleClient, PasswordHash: hashed(t, "old-password")}

	svc, repo, mailer := newService(t)

	var token string

	repo.EXPECT().GetUserByEmail(gomock.Any(), "a@b.com").Return(u, nil)
	mailer.EXPECT().Send(gomock.Any(), "a@b.com", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, body string) error {
			token = body[strings.LastIndex(body, " ")+1:]
			return nil
		})

	require.NoError(t, svc.SendPasswordReset(context.Background(), "A@B.com"))
	require.NotEmpty(t, token)

	var claims auth.Claims

	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.NotContains(t, claims.Stamp, u.PasswordHash[len(u.PasswordHash)-10:], "hash must not leak into the token")

	repo.EXPECT().GetUser(gomock.Any(), u.ID).Return(u, nil)
	repo.EXPECT().UpdatePassword(gomock.Any(), u.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, hash string) error {
			u.PasswordHash = hash
			return nil
		})

	require.NoError(t, svc.ResetPassword(context.Background(), token, "brand-new-pass"))

	repo.EXPECT().GetUser(gomock.Any(), u.ID).Return(u, nil)

	err = svc.ResetPassword(context.Background(), token, "another-pass")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated, "token is single use")
}

func TestService_SendPasswordReset_UnknownEmail(t *testing.T) {
	svc, repo, _ := newService(t)
	repo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(nil, apperr.ErrNotFound)

	assert.NoError(t, svc.SendPasswordReset(context.Background(), "ghost@x.com"))
}

func TestService_VerifyEmail(t *testing.T) {
	u := &auth.User{ID: uuid.New(), Email: "a@b.com", Role: identity.RoleClient}
	caller := identity.Caller{ID: u.ID, Role: identity.RoleClient}

	svc, repo, mailer := newService(t)

	var token string

	repo.EXPECT().GetUser(gomock.Any(), u.ID).Return(u, nil).Times(2)
	mailer.EXPECT().Send(gomock.Any(), u.Email, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, body string) error {
			token = body[strings.LastIndex(body, " ")+1:]
			return nil
		})
	repo.EXPECT().MarkEmailVerified(gomock.Any(), u.ID).Return(nil)

	require.NoError(t, svc.SendEmailVerification(context.Background(), caller))
	require.NoError(t, svc.VerifyEmail(context.Background(), token))

	_, err := svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated, "verification token is not a session")
}

func TestService_Profile(t *testing.T) {
	u := &auth.User{ID: uuid.New(), Name: "Bia", Role: identity.RoleSeller}

	svc, repo, _ := newService(t)
	repo.EXPECT().GetUser(gomock.Any(), u.ID).Return(u, nil)

	p, err := svc.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.Profile{ID: u.ID, Name: "Bia", Role: identity.RoleSeller}, p)
}
