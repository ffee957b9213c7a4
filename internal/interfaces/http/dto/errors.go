package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeHasDependents is used when a delete would orphan referencing rows
	ErrCodeHasDependents   = "ERR_HAS_DEPENDENTS"
	ErrCodeUnitAlreadySold = "ERR_UNIT_ALREADY_SOLD"
	ErrCodeWalletExists    = "ERR_WALLET_EXISTS"
)

// Business rule error codes
const (
	ErrCodeInvalidState           = "ERR_INVALID_STATE"
	ErrCodeBusinessRule           = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock      = "ERR_INSUFFICIENT_STOCK"
	ErrCodeInsufficientBalance    = "ERR_INSUFFICIENT_BALANCE"
	ErrCodeVoucherLocked          = "ERR_VOUCHER_LOCKED"
	ErrCodeContractLocked         = "ERR_CONTRACT_LOCKED"
	ErrCodeGroupFinalized         = "ERR_GROUP_FINALIZED"
	ErrCodeGroupNotFinalized      = "ERR_GROUP_NOT_FINALIZED"
	ErrCodeNothingToSettle        = "ERR_NOTHING_TO_SETTLE"
	ErrCodePaymentExceedsBalance  = "ERR_PAYMENT_EXCEEDS_BALANCE"
	ErrCodeAlreadyCancelled       = "ERR_ALREADY_CANCELLED"
	ErrCodeAlreadyReversed        = "ERR_ALREADY_REVERSED"
	ErrCodeInstallmentAlreadyPaid = "ERR_INSTALLMENT_ALREADY_PAID"
	ErrCodePartialInstallment     = "ERR_PARTIAL_INSTALLMENT"
	ErrCodeSafeInactive           = "ERR_SAFE_INACTIVE"
	ErrCodeSameSafe               = "ERR_SAME_SAFE"
	ErrCodeUnallocatedRemainder   = "ERR_UNALLOCATED_REMAINDER"
	ErrCodeWalletRequired         = "ERR_WALLET_REQUIRED"
)

// Input error codes. Any other ERR_INVALID_* code is treated as bad input too.
const (
	ErrCodeBadRequest         = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput       = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON        = "ERR_INVALID_JSON"
	ErrCodeInvalidAmount      = "ERR_INVALID_AMOUNT"
	ErrCodeInvalidDownPayment = "ERR_INVALID_DOWN_PAYMENT"
	ErrCodeInvalidPercentSum  = "ERR_INVALID_PERCENT_SUM"
	ErrCodeInvalidDate        = "ERR_INVALID_DATE"
	ErrCodeFutureDate         = "ERR_FUTURE_DATE"
	ErrCodeDuplicateMember    = "ERR_DUPLICATE_MEMBER"
	ErrCodeRequestTooLarge    = "ERR_REQUEST_TOO_LARGE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeHasDependents:       http.StatusConflict,
	ErrCodeUnitAlreadySold:     http.StatusConflict,
	ErrCodeWalletExists:        http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:           http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientBalance:    http.StatusUnprocessableEntity,
	ErrCodeVoucherLocked:          http.StatusUnprocessableEntity,
	ErrCodeContractLocked:         http.StatusUnprocessableEntity,
	ErrCodeGroupFinalized:         http.StatusUnprocessableEntity,
	ErrCodeGroupNotFinalized:      http.StatusUnprocessableEntity,
	ErrCodeNothingToSettle:        http.StatusUnprocessableEntity,
	ErrCodePaymentExceedsBalance:  http.StatusUnprocessableEntity,
	ErrCodeAlreadyCancelled:       http.StatusUnprocessableEntity,
	ErrCodeAlreadyReversed:        http.StatusUnprocessableEntity,
	ErrCodeInstallmentAlreadyPaid: http.StatusUnprocessableEntity,
	ErrCodePartialInstallment:     http.StatusUnprocessableEntity,
	ErrCodeSafeInactive:           http.StatusUnprocessableEntity,
	ErrCodeSameSafe:               http.StatusUnprocessableEntity,
	ErrCodeUnallocatedRemainder:   http.StatusUnprocessableEntity,
	ErrCodeWalletRequired:         http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeInvalidInput:       http.StatusBadRequest,
	ErrCodeInvalidJSON:        http.StatusBadRequest,
	ErrCodeInvalidAmount:      http.StatusBadRequest,
	ErrCodeInvalidDownPayment: http.StatusBadRequest,
	ErrCodeInvalidPercentSum:  http.StatusBadRequest,
	ErrCodeInvalidDate:        http.StatusBadRequest,
	ErrCodeFutureDate:         http.StatusBadRequest,
	ErrCodeDuplicateMember:    http.StatusBadRequest,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted ERR_INVALID_* codes are input errors; anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain codes whose HTTP name differs from ERR_<code>
var LegacyErrorCodeMapping = map[string]string{
	"VALIDATION_ERROR": ErrCodeValidation,
	"INTERNAL_ERROR":   ErrCodeInternal,
	"TOKEN_INVALID":    ErrCodeTokenInvalid,
}

// NormalizeErrorCode converts a domain error code to the ERR_ format.
// Codes already in that format are returned as-is.
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeUnknown
	}
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
