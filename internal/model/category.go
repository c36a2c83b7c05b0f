package model

import "time"

// DefaultEmoji decorates categories created without one.
const DefaultEmoji = "📦"

// Category groups products by name. Products reference it by name only.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex;size:100" json:"name"`
	Emoji       string    `gorm:"size:16" json:"emoji"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the table name for Category
func (Category) TableName() string {
	return "categories"
}

// DefaultCategories are inserted when the store is seeded.
func DefaultCategories() []Category {
	return []Category{
		{Emoji: "📱", Name: "Screen", Description: "Screens and touch panels"},
		{Emoji: "🔋", Name: "Battery", Description: "Batteries and accumulators"},
		{Emoji: "🛡️", Name: "Case", Description: "Protective cases and covers"},
		{Emoji: "🔍", Name: "Accessory", Description: "Various accessories"},
		{Emoji: "🔌", Name: "Cable", Description: "Cables and chargers"},
		{Emoji: "🔧", Name: "Tool", Description: "Repair tools"},
		{Emoji: "💾", Name: "Component", Description: "Electronic components"},
		{Emoji: "🎧", Name: "Audio", Description: "Earphones and speakers"},
		{Emoji: DefaultEmoji, Name: DefaultCategory, Description: "Other products"},
	}
}
