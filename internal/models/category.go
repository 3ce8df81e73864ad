package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Category struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string         `gorm:"type:text;uniqueIndex;not null" json:"name"`
	Aliases   pq.StringArray `gorm:"type:text[]" json:"aliases"`
	Generic   bool           `gorm:"not null;default:false" json:"generic"`
	Position  int            `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time      `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"type:timestamp;default:now()" json:"updated_at"`

	// Relations
	Keywords []CategoryKeyword `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"keywords"`
}

func (Category) TableName() string {
	return "categories"
}

type CategoryKeyword struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CategoryID uuid.UUID      `gorm:"type:uuid;not null;index" json:"category_id"`
	Term       string         `gorm:"type:text;not null" json:"term"`
	Weight     float64        `gorm:"type:decimal(5,2);not null;default:1" json:"weight"`
	Synonyms   pq.StringArray `gorm:"type:text[]" json:"synonyms"`
	Related    pq.StringArray `gorm:"type:text[]" json:"related"`
	Position   int            `gorm:"not null;default:0" json:"position"`
	CreatedAt  time.Time      `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (CategoryKeyword) TableName() string {
	return "category_keywords"
}
