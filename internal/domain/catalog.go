package domain

// Tag labels recipes (breakfast, dinner, ...). Reference data.
type Tag struct {
	ID    int64  `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:20;not null;uniqueIndex"`
	Color string `json:"color" gorm:"size:7;not null"`
	Slug  string `json:"slug" gorm:"size:20;not null;uniqueIndex"`
}

func (Tag) TableName() string { return "tags" }

// Product is an ingredient together with its measurement unit.
type Product struct {
	ID              int64  `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:200;not null;uniqueIndex:idx_product_name_unit"`
	MeasurementUnit string `json:"measurement_unit" gorm:"size:200;not null;uniqueIndex:idx_product_name_unit"`
}

func (Product) TableName() string { return "products" }
