package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness. Messages are
// carried in English and Spanish since both are served to clients.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	MessageEs string `json:"message_es,omitempty"`
	Status    int    `json:"status"`
	Err       error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message, messageEs string) *Error {
	return &Error{Code: code, Status: status, Message: message, MessageEs: messageEs}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INCORRECT_PASSWORD", http.StatusUnauthorized,
		"the user or password are incorrect", "La contraseña o usuario son incorrectos.")
	ErrUnregisteredUser = New("UNREGISTERED_USER", http.StatusUnauthorized,
		"the email is not registered", "El correo electrónico no está registrado.")
	ErrInactiveAccount = New("ACCOUNT_INACTIVE", http.StatusForbidden,
		"account is inactive", "La cuenta está desactivada.")
	ErrNotFound = New("NOT_FOUND", http.StatusNotFound,
		"the resource was not found", "El recurso no fue encontrado.")
	ErrUserNotFound = New("USER_NOT_FOUND", http.StatusNotFound,
		"the user was not found", "El usuario no fue encontrado.")
	ErrBicycleNotFound = New("BICYCLE_NOT_FOUND", http.StatusNotFound,
		"the bicycle was not found", "La bicicleta no fue encontrada.")
	ErrUserAlreadyExists = New("USER_ALREADY_EXISTS", http.StatusBadRequest,
		"a user with that email already exists, try signing in", "Ese correo electrónico ya está registrado, intenta ingresando sesión.")
	ErrInvalidEmail = New("INVALID_EMAIL", http.StatusBadRequest,
		"the email address is not valid", "El correo electrónico no es válido.")
	ErrForbidden = New("FORBIDDEN", http.StatusForbidden,
		"you are not allowed to access this resource", "No tienes permiso para acceder a este recurso.")
	ErrUnauthorized = New("UNAUTHENTICATED", http.StatusUnauthorized,
		"you must log in to access this resource", "Tienes que ingresar sesión para acceder a este recurso.")
	ErrSessionExpired = New("SESSION_EXPIRED", http.StatusUnauthorized,
		"your session has expired", "Su sesión ha expirado.")
	ErrConflict = New("CONFLICT", http.StatusConflict,
		"conflict", "Conflicto con el estado actual del recurso.")
	ErrValidation = New("BAD_REQUEST", http.StatusBadRequest,
		"bad request", "Solicitud inválida.")
	ErrMissingID = New("MISSING_ID", http.StatusBadRequest,
		"the field `id` is mandatory", "El campo `id` es obligatorio.")
	ErrInternal = New("UNKNOWN_ERROR", http.StatusInternalServerError,
		"an unknown error occurred", "Ocurrió un error desconocido.")
	ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound,
		"cache miss", "")

	// Scheduling taxonomy.
	ErrMalformedSchedule = New("EXPECTED_MATRIX", http.StatusBadRequest,
		"expected a 6x8 boolean matrix", "Se esperaba una matriz booleana de 6x8.")
	ErrOutOfService = New("OUT_OF_SERVICE", http.StatusServiceUnavailable,
		"the scheduling service is not configured yet", "El servicio de agendamiento aún no está configurado.")
	ErrSubmissionNotFound = New("SUBMISSION_NOT_FOUND", http.StatusBadRequest,
		"you have no pending submission or active booking", "No tienes una solicitud pendiente ni un préstamo activo.")
	ErrInvalidDate = New("INVALID_DATE", http.StatusBadRequest,
		"the provided date is not valid", "La fecha entregada no es válida.")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
