package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"asset-marketplace/internal/core/domain"
	"asset-marketplace/internal/core/ports"
	"asset-marketplace/internal/core/ports/mocks"
	"asset-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupAuthService(t *testing.T) (
	*AuthServiceImpl,
	*mocks.MockAccountRepository,
	*mocks.MockHashService,
	*mocks.MockTokenService,
	*gomock.Controller,
) {
	ctrl := gomock.NewController(t)
	accountRepo := mocks.NewMockAccountRepository(ctrl)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	svc := NewAuthService(accountRepo, hashSvc, tokenSvc)
	return svc, accountRepo, hashSvc, tokenSvc, ctrl
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, accountRepo, hashSvc, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	req := ports.RegisterRequest{
		Username:    "new_user",
		Password:    "StrongP@ss123",
		DisplayName: "New User",
	}

	accountRepo.EXPECT().GetByUsername(ctx, req.Username).Return(nil, nil)
	hashSvc.EXPECT().Hash(req.Password).Return("$argon2id$hashed", nil)
	accountRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	account, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.Equal(t, "new_user", account.Username)
	assert.Equal(t, "$argon2id$hashed", account.PasswordHash)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc, accountRepo, _, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	req := ports.RegisterRequest{
		Username: "existing_user",
		Password: "password",
	}

	existing := &domain.Account{Username: "existing_user"}
	accountRepo.EXPECT().GetByUsername(ctx, req.Username).Return(existing, nil)

	account, err := svc.Register(ctx, req)
	assert.Nil(t, account)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "AUTH_002", appErr.Code)
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, accountRepo, hashSvc, tokenSvc, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()

	account := &domain.Account{
		ID:           accountID,
		Username:     "test_user",
		PasswordHash: "$argon2id$hashed",
	}

	accountRepo.EXPECT().GetByUsername(ctx, "test_user").Return(account, nil)
	hashSvc.EXPECT().Verify("correct_password", "$argon2id$hashed").Return(true, nil)
	tokenSvc.EXPECT().Generate(accountID, "test_user").Return("jwt_token_here", time.Now().Add(24*time.Hour), nil)

	token, _, err := svc.Login(ctx, "test_user", "correct_password")
	require.NoError(t, err)
	assert.Equal(t, "jwt_token_here", token)
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc, accountRepo, _, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountRepo.EXPECT().GetByUsername(ctx, "nonexistent").Return(nil, nil)

	_, _, err := svc.Login(ctx, "nonexistent", "password")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, accountRepo, hashSvc, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	account := &domain.Account{
		ID:           uuid.New(),
		Username:     "test_user",
		PasswordHash: "$argon2id$hashed",
	}

	accountRepo.EXPECT().GetByUsername(ctx, "test_user").Return(account, nil)
	hashSvc.EXPECT().Verify("wrong_password", "$argon2id$hashed").Return(false, nil)

	_, _, err := svc.Login(ctx, "test_user", "wrong_password")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_RepoFailure(t *testing.T) {
	svc, accountRepo, _, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountRepo.EXPECT().GetByUsername(ctx, "test_user").Return(nil, errors.New("db down"))

	_, _, err := svc.Login(ctx, "test_user", "password")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "SYS_001", appErr.Code)
}
