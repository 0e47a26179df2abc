package dto

// Response sobre uniforme de la API: {success, data|message, count?}.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// OK construye una respuesta exitosa con data.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// OKCount construye una respuesta exitosa de listado con count.
func OKCount(data any, count int) Response {
	return Response{Success: true, Data: data, Count: &count}
}

// OKMessage construye una respuesta exitosa con data y mensaje.
func OKMessage(data any, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

// Fail construye una respuesta de error con mensaje legible.
func Fail(message string) Response {
	return Response{Success: false, Message: message}
}

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}
