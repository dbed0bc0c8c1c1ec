package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
	"github.com/shashiranjanraj/kirana/pkg/auth"
)

// fakeUserRepo is an in-memory UserRepository keyed by id with an email
// uniqueness check, mirroring the unique index on the real collection.
type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperr.ErrConflict
		}
	}
	u.ID = primitive.NewObjectID()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *models.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return apperr.ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func register(t *testing.T, svc *services.AuthService) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), services.RegisterInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "secret1",
		Phone:    "9999999999",
		Address:  "12 Bazaar Road",
		Answer:   "cricket",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := services.NewAuthService(repo)

	u := register(t, svc)

	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "secret1", u.Password, "plaintext must never be stored")

	ok, err := auth.CheckPassword(u.Password, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := services.NewAuthService(repo)
	register(t, svc)

	_, err := svc.Register(context.Background(), services.RegisterInput{
		Name: "Other", Email: "asha@example.com", Password: "secret1",
		Phone: "1", Address: "x", Answer: "y",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegisterShortPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := services.NewAuthService(repo)

	_, err := svc.Register(context.Background(), services.RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "short",
		Phone: "1", Address: "x", Answer: "y",
	})
	assert.True(t, apperr.IsValidation(err))
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := services.NewAuthService(repo)
	u := register(t, svc)

	token, got, err := svc.Login(context.Background(), "asha@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := services.NewAuthService(repo)
	register(t, svc)

	_, _, err := svc.Login(context.Background(), "asha@example.com", "wrong-pass")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := services.NewAuthService(repo)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestForgotPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := services.NewAuthService(repo)
	register(t, svc)

	err := svc.ForgotPassword(context.Background(), "asha@example.com", "cricket", "newsecret")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "asha@example.com", "newsecret")
	assert.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "asha@example.com", "secret1")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestForgotPasswordWrongAnswer(t *testing.T) {
	repo := newFakeUserRepo()
	svc := services.NewAuthService(repo)
	register(t, svc)

	err := svc.ForgotPassword(context.Background(), "asha@example.com", "football", "newsecret")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestUpdateProfileKeepsUntouchedFields(t *testing.T) {
	repo := newFakeUserRepo()
	svc := services.NewAuthService(repo)
	u := register(t, svc)

	got, err := svc.UpdateProfile(context.Background(), u.ID, services.ProfileInput{
		Address: "44 New Market",
	})
	require.NoError(t, err)

	assert.Equal(t, "44 New Market", got.Address)
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, "9999999999", got.Phone)

	// Password untouched: old one still works.
	_, _, err = svc.Login(context.Background(), "asha@example.com", "secret1")
	assert.NoError(t, err)
}

func TestUpdateProfileShortPasswordRejected(t *testing.T) {
	repo := newFakeUserRepo()
	svc := services.NewAuthService(repo)
	u := register(t, svc)

	_, err := svc.UpdateProfile(context.Background(), u.ID, services.ProfileInput{Password: "tiny"})
	assert.True(t, apperr.IsValidation(err))
}
