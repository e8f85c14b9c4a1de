package handler

const (
	errInternalServer     = "Server Error"
	errInvalidBody        = "Invalid request body"
	errPasswordTooLong    = "Password should be at most 72 bytes long"
	errNameBlank          = "Name is required"
	errInvalidCredentials = "Invalid Credentials"
	errEmailTaken         = "User with same email already exists"
	errUserNotFound       = "User not found"
	errUnauthorized       = "unauthorized"

	msgUserRegistered = "User registered!"
	msgPasswordReset  = "Password reset successfully"
	msgEmailSent      = "Email sent successfully"
)
