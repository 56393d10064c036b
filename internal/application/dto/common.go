package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=1000"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError detalle de un campo inválido.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CBUDTO cantidad en cajas/bandejas/unidades.
type CBUDTO struct {
	Boxes      int64 `json:"cajas" validate:"min=0,max=1000000000000"`
	Trays      int64 `json:"bandejas" validate:"min=0,max=1000000000000"`
	Units      int64 `json:"unidades" validate:"min=0,max=1000000000000"`
	TotalUnits int64 `json:"totalUnidades,omitempty"`
}
