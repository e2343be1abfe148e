package models

import (
	"time"
)

// Subscription is a follower -> author link.
type Subscription struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_subscription_user_author" json:"user_id"`
	AuthorID uint      `gorm:"not null;uniqueIndex:idx_subscription_user_author;index" json:"author_id"`
	Author   User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Created  time.Time `gorm:"autoCreateTime" json:"created"`
}

// All lists every model managed by AutoMigrate, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Ingredient{},
		&Tag{},
		&Recipe{},
		&RecipeIngredient{},
		&Subscription{},
		&Favorite{},
		&ShoppingCartItem{},
	}
}
