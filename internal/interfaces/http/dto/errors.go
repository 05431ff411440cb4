package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the access token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the access token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeTokenRevoked is used when the access token has been revoked
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
	// ErrCodeInvalidCredentials is used when signin credentials are wrong
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	// ErrCodeAccountSuspended is used when the account is suspended
	ErrCodeAccountSuspended = "ERR_ACCOUNT_SUSPENDED"
	// ErrCodeAccountInactive is used when the account is deactivated
	ErrCodeAccountInactive = "ERR_ACCOUNT_INACTIVE"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeProductInUse is used when a product with live subscriptions would be removed
	ErrCodeProductInUse = "ERR_PRODUCT_IN_USE"
	// ErrCodeProductInactive is used when subscribing to a retired product
	ErrCodeProductInactive = "ERR_PRODUCT_INACTIVE"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountSuspended:   http.StatusForbidden,
	ErrCodeAccountInactive:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:    http.StatusUnprocessableEntity,
	ErrCodeProductInUse:    http.StatusUnprocessableEntity,
	ErrCodeProductInactive: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to standardized API
// codes. Domain codes without a mapping pass through unchanged and
// resolve to 500 unless listed in ErrorCodeHTTPStatus.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,

	"INVALID_CREDENTIALS":   ErrCodeInvalidCredentials,
	"ACCOUNT_SUSPENDED":     ErrCodeAccountSuspended,
	"ACCOUNT_INACTIVE":      ErrCodeAccountInactive,
	"INVALID_TOKEN":         ErrCodeTokenInvalid,
	"INVALID_REFRESH_TOKEN": ErrCodeTokenInvalid,
	"USER_NOT_FOUND":        ErrCodeNotFound,

	"SIGNUP_REJECTED":   ErrCodeValidation,
	"PASSWORD_REJECTED": ErrCodeValidation,
	"SELF_ROLE_CHANGE":  ErrCodeBusinessRule,
	"SELF_DEACTIVATE":   ErrCodeBusinessRule,
	"SELF_SUSPEND":      ErrCodeBusinessRule,
	"SELF_DELETE":       ErrCodeBusinessRule,
	"ALREADY_ACTIVE":    ErrCodeInvalidState,
	"ALREADY_INACTIVE":  ErrCodeInvalidState,
	"ALREADY_SUSPENDED": ErrCodeInvalidState,

	"PRODUCT_IN_USE":   ErrCodeProductInUse,
	"PRODUCT_INACTIVE": ErrCodeProductInactive,

	"INVALID_PLAN":          ErrCodeInvalidInput,
	"INVALID_BILLING_CYCLE": ErrCodeInvalidInput,
	"INVALID_AMOUNT":        ErrCodeInvalidInput,
	"INVALID_CURRENCY":      ErrCodeInvalidInput,
	"INVALID_PRICE":         ErrCodeInvalidInput,
	"INVALID_LIMITS":        ErrCodeInvalidInput,
	"INVALID_NAME":          ErrCodeInvalidInput,
	"INVALID_SLUG":          ErrCodeInvalidInput,
	"INVALID_CATEGORY":      ErrCodeInvalidInput,
	"INVALID_URL":           ErrCodeInvalidInput,
	"INVALID_FILE":          ErrCodeInvalidInput,
	"INVALID_METADATA":      ErrCodeInvalidInput,
	"INVALID_EMAIL":         ErrCodeInvalidInput,
	"INVALID_ROLE":          ErrCodeInvalidInput,
	"INVALID_PROFILE":       ErrCodeInvalidInput,
	"INVALID_PRODUCT":       ErrCodeInvalidInput,
	"INVALID_USER":          ErrCodeInvalidInput,
	"INVALID_SUBSCRIPTION":  ErrCodeInvalidInput,
	"INVALID_PROVIDER":      ErrCodeInvalidInput,
	"INVALID_PROVIDER_ID":   ErrCodeInvalidInput,

	"ALREADY_CANCELED":     ErrCodeInvalidState,
	"ALREADY_EXPIRED":      ErrCodeInvalidState,
	"NOT_CANCELED":         ErrCodeInvalidState,
	"SAME_PLAN":            ErrCodeInvalidState,
	"RENEWAL_DISABLED":     ErrCodeInvalidState,
	"REACTIVATION_EXPIRED": ErrCodeInvalidState,
}

// NormalizeErrorCode converts a domain error code to the standardized
// API format. Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
