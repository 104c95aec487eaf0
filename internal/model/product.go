package model

import "time"

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"

	SKUPrefix = "CT"
)

type Product struct {
	BaseModel
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	SKU         string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	CountryCode string    `gorm:"type:char(2);not null;index" json:"country_code"`
	LoadDate    time.Time `gorm:"not null" json:"load_date"`
}

// Status is "deleted" for soft-deleted rows and "active" otherwise.
func (p *Product) Status() string {
	if p.IsDeleted() {
		return StatusDeleted
	}
	return StatusActive
}
