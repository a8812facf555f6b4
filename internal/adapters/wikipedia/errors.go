package wikipedia

import "errors"

// Sentinel kinds for summary lookups.
var (
	ErrMalformedTitle     = errors.New("malformed article title")
	ErrPageNotFound       = errors.New("page not found")
	ErrExtractUnavailable = errors.New("extract unavailable")
	ErrUnreachable        = errors.New("could not contact service")
	ErrBadResponse        = errors.New("could not process response")
)

// UserMessage returns the Spanish text shown in the panel for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedTitle):
		return "Título de Wikipedia malformado o inválido."
	case errors.Is(err, ErrPageNotFound):
		return "La página de Wikipedia no fue encontrada o no tiene resumen."
	case errors.Is(err, ErrExtractUnavailable):
		return "No se pudo extraer el resumen de Wikipedia."
	case errors.Is(err, ErrBadResponse):
		return "Error al procesar la respuesta de Wikipedia."
	default:
		return "No se pudo contactar con Wikipedia para obtener el resumen."
	}
}

// outcome is the metrics label for err.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ready"
	case errors.Is(err, ErrMalformedTitle):
		return "malformed_title"
	case errors.Is(err, ErrPageNotFound):
		return "not_found"
	case errors.Is(err, ErrExtractUnavailable):
		return "unavailable"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	default:
		return "unreachable"
	}
}
