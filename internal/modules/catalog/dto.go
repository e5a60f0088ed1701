package catalog

type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,max=20"`
	Color string `json:"color" validate:"required,hexcolor,len=7"`
	Slug  string `json:"slug" validate:"omitempty,max=20"`
}

type CreateProductRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=200"`
}
