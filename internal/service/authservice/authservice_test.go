package authservice

import (
	"context"
	"errors"
	"testing"

	"github.com/sahajm/carewallet/internal/domain"
	"github.com/sahajm/carewallet/pkg/auth"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

const validCardNumber = "79927398713"

func NewMock(t *testing.T) (*Service, *MockRepo, *auth.MockHashServiceInterface, *auth.MockJWTServiceInterface) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	hashService := auth.NewMockHashServiceInterface(ctrl)
	jwtService := auth.NewMockJWTServiceInterface(ctrl)

	service := New(repo, hashService, jwtService)
	defer ctrl.Finish()
	return service, repo, hashService, jwtService
}

func TestRegister(t *testing.T) {
	service, userRepo, passwordHasher, _ := NewMock(t)

	tests := []struct {
		name          string
		login         string
		password      string
		cardNumber    string
		prepareMock   func()
		expectedUser  *domain.User
		expectedError error
	}{
		{
			name:       "Successful registration",
			login:      "testuser",
			password:   "password123",
			cardNumber: validCardNumber,
			prepareMock: func() {
				userRepo.EXPECT().FindByLogin(gomock.Any(), "testuser").Return(nil, nil)
				passwordHasher.EXPECT().HashPassword("password123").Return("hashedPassword", nil)
				userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, user *domain.User) (*domain.User, error) {
						assert.Equal(t, domain.RoleCustomer, user.Role)
						assert.Equal(t, validCardNumber, user.MembershipNumber)
						user.ID = 1
						return user, nil
					})
			},
			expectedUser: &domain.User{
				ID: 1, Login: "testuser", PasswordHash: "hashedPassword",
				Role: domain.RoleCustomer, MembershipNumber: validCardNumber,
			},
		},
		{
			name:          "Membership number failing the checksum",
			login:         "testuser",
			password:      "password123",
			cardNumber:    "79927398710",
			prepareMock:   func() {},
			expectedError: ErrInvalidMembershipNumber,
		},
		{
			name:       "Login already taken",
			login:      "testuser",
			password:   "password123",
			cardNumber: validCardNumber,
			prepareMock: func() {
				userRepo.EXPECT().FindByLogin(gomock.Any(), "testuser").Return(&domain.User{ID: 1, Login: "testuser"}, nil)
			},
			expectedError: ErrLoginTaken,
		},
		{
			name:       "Hashing error",
			login:      "testuser",
			password:   "password123",
			cardNumber: validCardNumber,
			prepareMock: func() {
				userRepo.EXPECT().FindByLogin(gomock.Any(), "testuser").Return(nil, nil)
				passwordHasher.EXPECT().HashPassword("password123").Return("", errors.New("hashing error"))
			},
			expectedError: errors.New("hashing error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			user, err := service.Register(context.Background(), tt.login, tt.password, tt.cardNumber)
			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	service, userRepo, passwordHasher, _ := NewMock(t)

	tests := []struct {
		name          string
		login         string
		password      string
		prepareMock   func()
		expectedUser  *domain.User
		expectedError error
	}{
		{
			name:     "Successful authentication",
			login:    "testuser",
			password: "password123",
			prepareMock: func() {
				userRepo.EXPECT().FindByLogin(gomock.Any(), "testuser").Return(&domain.User{
					ID: 1, Login: "testuser", PasswordHash: "hashedPassword", Role: domain.RoleCustomer,
				}, nil)
				passwordHasher.EXPECT().ComparePassword("hashedPassword", "password123").Return(true)
			},
			expectedUser: &domain.User{
				ID: 1, Login: "testuser", PasswordHash: "hashedPassword", Role: domain.RoleCustomer,
			},
		},
		{
			name:     "Unknown login",
			login:    "missing",
			password: "password123",
			prepareMock: func() {
				userRepo.EXPECT().FindByLogin(gomock.Any(), "missing").Return(nil, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "Wrong password",
			login:    "testuser",
			password: "wrong",
			prepareMock: func() {
				userRepo.EXPECT().FindByLogin(gomock.Any(), "testuser").Return(&domain.User{
					ID: 1, Login: "testuser", PasswordHash: "hashedPassword",
				}, nil)
				passwordHasher.EXPECT().ComparePassword("hashedPassword", "wrong").Return(false)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			user, err := service.Authenticate(context.Background(), tt.login, tt.password)
			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			}
		})
	}
}

func TestGenerateToken(t *testing.T) {
	service, _, _, jwtService := NewMock(t)

	jwtService.EXPECT().GenerateJWT(1, domain.RoleCustomer, gomock.Any()).Return("token", nil)
	token, err := service.GenerateToken(1, domain.RoleCustomer)
	assert.NoError(t, err)
	assert.Equal(t, "token", token)

	jwtService.EXPECT().GenerateJWT(1, domain.RoleAdmin, gomock.Any()).Return("", errors.New("signing error"))
	token, err = service.GenerateToken(1, domain.RoleAdmin)
	assert.Error(t, err)
	assert.Empty(t, token)
}
