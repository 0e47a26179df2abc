package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Identidad y verificación de email.
	ErrInvalidCredentials   = errors.New("credenciales inválidas")
	ErrEmailNotVerified     = errors.New("el email no ha sido verificado")
	ErrAlreadyVerified      = errors.New("el email ya fue verificado")
	ErrInvalidOrExpiredCode = errors.New("código de verificación inválido o expirado")

	// Ciclo de vida de cotizaciones.
	ErrInvalidStatus     = errors.New("status inválido")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrInsufficientHours = errors.New("horas insuficientes")

	// Pagos.
	ErrInvalidGateway    = errors.New("pasarela de pago inválida")
	ErrInvalidSignature  = errors.New("firma de pago inválida")
	ErrPaymentIncomplete = errors.New("el pago no fue completado")
	ErrDuplicatePayment  = errors.New("el pago ya fue registrado")

	// Configuración de tarifas.
	ErrLastActiveRate = errors.New("no se puede eliminar la última tarifa activa")

	// Colaboradores externos (email, pasarelas).
	ErrUpstream = errors.New("fallo en servicio externo")
)
