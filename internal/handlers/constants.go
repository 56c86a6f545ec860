package handlers

const (
	ErrInvalidRequestBody  = "invalid request body"
	ErrInternalServerError = "internal server error"
	ErrTooManyAttempts     = "too many attempts, please try again later"

	userContextKey = "user"
)
