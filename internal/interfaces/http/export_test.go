package http

// RespondError expone el mapeo de errores de dominio a los tests externos.
var RespondError = respondError
