package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserService serves user listings and subscriptions.
type UserService struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ IUserService = (*UserService)(nil)

func NewUserService(db *gorm.DB, logger *zap.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

func (s *UserService) ListUsers(ctx context.Context, viewer uint, page types.PageRequest) ([]types.User, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Where("is_active = ?", true).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := db.Where("is_active = ?", true).
		Order("id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := lookupSet(db, &models.Subscription{}, viewer, "author_id", ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]types.User, len(users))
	for i := range users {
		result[i] = userResponse(&users[i], subscribed[users[i].ID])
	}
	return result, total, nil
}

func (s *UserService) GetUser(ctx context.Context, viewer, id uint) (*types.User, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	subscribed, err := lookupSet(s.db.WithContext(ctx), &models.Subscription{}, viewer, "author_id", []uint{id})
	if err != nil {
		return nil, err
	}
	resp := userResponse(user, subscribed[id])
	return &resp, nil
}

// Subscribe makes viewer follow authorID.
func (s *UserService) Subscribe(ctx context.Context, viewer, authorID uint, recipesLimit int) (*types.Subscription, error) {
	author, err := s.findUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author.ID == viewer {
		return nil, invalid("", "you cannot subscribe to yourself")
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", viewer, authorID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, invalid("", "already subscribed to this author")
	}

	if err := db.Create(&models.Subscription{UserID: viewer, AuthorID: authorID}).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, invalid("", "already subscribed to this author")
		}
		return nil, err
	}

	subs, err := s.subscriptions(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

// Unsubscribe removes the viewer -> authorID link.
func (s *UserService) Unsubscribe(ctx context.Context, viewer, authorID uint) error {
	if _, err := s.findUser(ctx, authorID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", viewer, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return invalid("", "you are not subscribed to this author")
	}
	return nil
}

// ListSubscriptions pages through the authors viewer follows.
func (s *UserService) ListSubscriptions(ctx context.Context, viewer uint, page types.PageRequest, recipesLimit int) ([]types.Subscription, int64, error) {
	db := s.db.WithContext(ctx)
	followed := db.Model(&models.Subscription{}).Select("author_id").Where("user_id = ?", viewer)

	var total int64
	if err := db.Model(&models.User{}).Where("id IN (?)", followed).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	if err := db.Where("id IN (?)", followed).
		Order("id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	subs, err := s.subscriptions(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// subscriptions renders followed authors with their newest recipes.
// recipesLimit <= 0 means no limit.
func (s *UserService) subscriptions(ctx context.Context, authors []models.User, recipesLimit int) ([]types.Subscription, error) {
	db := s.db.WithContext(ctx)
	result := make([]types.Subscription, 0, len(authors))
	for i := range authors {
		author := &authors[i]

		var count int64
		if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
			return nil, err
		}

		q := db.Where("author_id = ?", author.ID).Order("pub_date DESC, id DESC")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return nil, err
		}

		previews := make([]types.RecipeShort, len(recipes))
		for j := range recipes {
			previews[j] = recipeShort(&recipes[j])
		}
		result = append(result, types.Subscription{
			User:         userResponse(author, true),
			Recipes:      previews,
			RecipesCount: count,
		})
	}
	return result, nil
}

func (s *UserService) findUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, err
	}
	return &user, nil
}
