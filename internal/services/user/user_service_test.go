package user

import (
	"context"
	"strconv"
	"testing"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	byEmail map[string]*User
	nextID  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byEmail: map[string]*User{}}
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeStore) Create(_ context.Context, name, email, passwordHash string, role UserRole) (*User, error) {
	f.nextID++
	u := &User{
		ID:           "user-" + strconv.Itoa(f.nextID),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.byEmail[email] = u
	return u, nil
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	svc := NewUserService(newFakeStore())

	created, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Alice",
		Email:    "a@x.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, RoleUser, created.Role)
	assert.NotEqual(t, "secret123", created.PasswordHash)
	assert.True(t, VerifyPassword("secret123", created.PasswordHash))
	assert.False(t, VerifyPassword("wrong", created.PasswordHash))
}

func TestRegisterNormalizesEmail(t *testing.T) {
	store := newFakeStore()
	svc := NewUserService(store)

	created, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Alice",
		Email:    "  A@X.com ",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", created.Email)

	// Same address with different case is the same account
	_, err = svc.Register(context.Background(), &RegisterRequest{
		Name:     "Alice Again",
		Email:    "a@X.COM",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

// racingStore simulates an insert landing between the uniqueness pre-check
// and our own: the lookup misses but the unique index rejects the insert.
type racingStore struct {
	*fakeStore
}

func (r *racingStore) GetByEmail(_ context.Context, _ string) (*User, error) {
	return nil, ErrUserNotFound
}

func (r *racingStore) Create(_ context.Context, _, _, _ string, _ UserRole) (*User, error) {
	return nil, ErrEmailTaken
}

func TestRegisterConcurrentDuplicateIsConflict(t *testing.T) {
	svc := NewUserService(&racingStore{newFakeStore()})

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Alice",
		Email:    "a@x.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc := NewUserService(newFakeStore())

	cases := []RegisterRequest{
		{Name: "", Email: "a@x.com", Password: "secret123"},
		{Name: "Alice", Email: "", Password: "secret123"},
		{Name: "Alice", Email: "not-an-email", Password: "secret123"},
		{Name: "Alice", Email: "a@x.com", Password: "short"},
	}

	for _, req := range cases {
		_, err := svc.Register(context.Background(), &req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewUserService(newFakeStore())

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Alice",
		Email:    "a@x.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	found, err := svc.Authenticate(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", found.Email)

	_, err = svc.Authenticate(context.Background(), "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown account reports the same failure as a bad password
	_, err = svc.Authenticate(context.Background(), "nobody@x.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordHashNeverSerialized(t *testing.T) {
	svc := NewUserService(newFakeStore())

	created, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Alice",
		Email:    "a@x.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	body, err := json.Marshal(created)
	require.NoError(t, err)
	assert.NotContains(t, string(body), created.PasswordHash)
	assert.NotContains(t, string(body), "password")
}

func TestUserRoles(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, UserRole("superuser").Valid())

	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
}

func TestHashPasswordSaltsPerCall(t *testing.T) {
	first, err := HashPassword("secret123")
	require.NoError(t, err)
	second, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword("secret123", first))
	assert.True(t, VerifyPassword("secret123", second))
}
