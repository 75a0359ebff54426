package models

// Tag is immutable reference data attached to recipes.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"type:varchar(200);uniqueIndex;not null" json:"name"`
	Slug  string `gorm:"type:varchar(200);uniqueIndex;not null" json:"slug"`
	Color string `gorm:"type:varchar(7);uniqueIndex;not null" json:"color"`
}
