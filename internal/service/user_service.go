package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bidmarket/internal/cache"
	apperrors "bidmarket/internal/errors"
	"bidmarket/internal/model"
	"bidmarket/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes profile reads and the address/bid sub-collection
// operations. Reads by id go through the cache; every mutation invalidates
// the user's cache entry.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetProfile(ctx context.Context, phoneNumber string) (*model.User, error)
	UpdateProfile(ctx context.Context, phoneNumber string, patch model.ProfilePatch) (*model.User, error)

	UpsertBid(ctx context.Context, userID uint, productID string, amount float64) (*model.User, error)

	AddAddress(ctx context.Context, userID uint, address model.Address) ([]model.Address, error)
	EditAddress(ctx context.Context, userID uint, addressID uuid.UUID, patch model.AddressPatch) ([]model.Address, error)
	ListAddresses(ctx context.Context, userID uint) ([]model.Address, error)
	DeleteAddress(ctx context.Context, userID uint, addressID uuid.UUID) ([]model.Address, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) invalidate(ctx context.Context, id uint) {
	_ = s.cache.Delete(ctx, s.cacheKey(id))
}

// findUser maps a missing record onto the domain error.
func (s *userService) findUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, phoneNumber string) (*model.User, error) {
	user, err := s.repo.FindByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile patches the given fields and clears the new-user flag.
func (s *userService) UpdateProfile(ctx context.Context, phoneNumber string, patch model.ProfilePatch) (*model.User, error) {
	user, err := s.repo.UpdateProfile(ctx, phoneNumber, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	s.invalidate(ctx, user.ID)
	return user, nil
}

// UpsertBid replaces the user's bid amount for the product, or appends a new
// bid entry, and returns the updated user.
func (s *userService) UpsertBid(ctx context.Context, userID uint, productID string, amount float64) (*model.User, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertBid(ctx, userID, productID, amount); err != nil {
		return nil, fmt.Errorf("upsert bid: %w", err)
	}
	s.invalidate(ctx, userID)

	return s.findUser(ctx, userID)
}

func (s *userService) AddAddress(ctx context.Context, userID uint, address model.Address) ([]model.Address, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	address.ID = uuid.Nil // sub-id is store-assigned
	address.UserID = userID
	if err := s.repo.AddAddress(ctx, &address); err != nil {
		return nil, fmt.Errorf("add address: %w", err)
	}
	s.invalidate(ctx, userID)

	return s.repo.ListAddresses(ctx, userID)
}

func (s *userService) EditAddress(ctx context.Context, userID uint, addressID uuid.UUID, patch model.AddressPatch) ([]model.Address, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateAddress(ctx, userID, addressID, patch)
	if err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}
	if !updated {
		return nil, apperrors.ErrAddressNotFound
	}
	s.invalidate(ctx, userID)

	return s.repo.ListAddresses(ctx, userID)
}

func (s *userService) ListAddresses(ctx context.Context, userID uint) ([]model.Address, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListAddresses(ctx, userID)
}

func (s *userService) DeleteAddress(ctx context.Context, userID uint, addressID uuid.UUID) ([]model.Address, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeleteAddress(ctx, userID, addressID)
	if err != nil {
		return nil, fmt.Errorf("delete address: %w", err)
	}
	if !deleted {
		return nil, apperrors.ErrAddressNotFound
	}
	s.invalidate(ctx, userID)

	return s.repo.ListAddresses(ctx, userID)
}
