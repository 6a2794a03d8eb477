package service

import (
	"context"

	"event-ticketing/internal/model"
	"event-ticketing/internal/repository"
	apperrors "event-ticketing/pkg/apperrors"
)

type UserService interface {
	CreateUser(ctx context.Context, name, phone string, role model.UserRole) (*model.User, error)
	GetUser(ctx context.Context, id int) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

type UserServiceImpl struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &UserServiceImpl{userRepo: userRepo}
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, name, phone string, role model.UserRole) (*model.User, error) {
	user, err := model.NewUser(name, phone, role)
	if err != nil {
		return nil, err
	}

	// 先查再寫只是提早回報；唯一索引才是最終防線
	exists, err := s.userRepo.ExistsByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicatePhone
	}

	return s.userRepo.Create(ctx, user)
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id int) (*model.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.List(ctx)
}
