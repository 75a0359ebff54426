package models

// Ingredient is a catalog entry. Name and unit pairs are expected to be
// unique by import convention but the schema does not enforce it.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"type:varchar(200);index;not null" json:"name"`
	MeasurementUnit string `gorm:"type:varchar(200);not null" json:"measurement_unit"`
}
