package testutils

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tech-arch1tect/rememberme/services/user"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) FindByID(ctx context.Context, id uint) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockUserStore) FindByRememberMeToken(ctx context.Context, token string) (*user.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockUserStore) UpdateRememberMeToken(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) UpdatePasswordHash(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}
