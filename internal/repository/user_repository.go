package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bidmarket/internal/model"
)

// UserRepository defines persistence operations over user records. Every
// mutation is a single conditional statement so concurrent requests for the
// same user cannot lose updates to each other.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByPhone(ctx context.Context, phoneNumber string) (*model.User, error)
	UpdateProfile(ctx context.Context, phoneNumber string, patch model.ProfilePatch) (*model.User, error)

	// Token state. SetTokens overwrites unconditionally (login/registration);
	// RotateRefreshToken replaces the stored refresh token only if it still
	// equals current, reporting whether the swap happened.
	SetTokens(ctx context.Context, id uint, accessToken, refreshToken string) error
	RotateRefreshToken(ctx context.Context, id uint, current, next, accessToken string) (bool, error)
	ClearRefreshToken(ctx context.Context, id uint) error

	// Address sub-collection.
	AddAddress(ctx context.Context, address *model.Address) error
	UpdateAddress(ctx context.Context, userID uint, addressID uuid.UUID, patch model.AddressPatch) (bool, error)
	ListAddresses(ctx context.Context, userID uint) ([]model.Address, error)
	DeleteAddress(ctx context.Context, userID uint, addressID uuid.UUID) (bool, error)

	// Bid sub-collection: replace the amount if the user already bid on the
	// product, append otherwise.
	UpsertBid(ctx context.Context, userID uint, productID string, amount float64) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Addresses").Preload("Bids").
		First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByPhone(ctx context.Context, phoneNumber string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("Addresses").Preload("Bids").
		Where("phone_number = ?", phoneNumber).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile patches the set fields and clears is_new_user, then reloads
// the record. Returns gorm.ErrRecordNotFound when no user matches.
func (r *userRepository) UpdateProfile(ctx context.Context, phoneNumber string, patch model.ProfilePatch) (*model.User, error) {
	updates := map[string]interface{}{"is_new_user": false}
	if patch.FirstName != nil {
		updates["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		updates["last_name"] = *patch.LastName
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}

	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("phone_number = ?", phoneNumber).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByPhone(ctx, phoneNumber)
}

func (r *userRepository) SetTokens(ctx context.Context, id uint, accessToken, refreshToken string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		}).Error
}

// RotateRefreshToken performs a compare-and-swap on the stored refresh token.
// A false return means current was no longer the stored value: the token was
// superseded by a concurrent rotation, login, or logout.
func (r *userRepository) RotateRefreshToken(ctx context.Context, id uint, current, next, accessToken string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND refresh_token = ?", id, current).
		Updates(map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": next,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) ClearRefreshToken(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("refresh_token", "").Error
}

func (r *userRepository) AddAddress(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *userRepository) UpdateAddress(ctx context.Context, userID uint, addressID uuid.UUID, patch model.AddressPatch) (bool, error) {
	updates := patch.Fields()
	if len(updates) == 0 {
		// nothing to change; report whether the address exists
		var count int64
		err := r.db.WithContext(ctx).Model(&model.Address{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Count(&count).Error
		return count > 0, err
	}

	res := r.db.WithContext(ctx).Model(&model.Address{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) ListAddresses(ctx context.Context, userID uint) ([]model.Address, error) {
	var addresses []model.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *userRepository) DeleteAddress(ctx context.Context, userID uint, addressID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&model.Address{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) UpsertBid(ctx context.Context, userID uint, productID string, amount float64) error {
	bid := model.Bid{
		UserID:    userID,
		ProductID: productID,
		Amount:    amount,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&bid).Error
}
