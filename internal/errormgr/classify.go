package errormgr

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// provider error codes, inspected at the call site that knows which of them are benign
const (
	CodeConflict              = "ConflictException"
	CodeDuplicateResource     = "DuplicateResourceException"
	CodeResourceAlreadyExists = "ResourceAlreadyExistsException"
	CodeEntityAlreadyExists   = "EntityAlreadyExists"
	CodeResourceNotFound      = "ResourceNotFoundException"
	CodeNoSuchEntity          = "NoSuchEntity"
	CodeOptInRequired         = "OptInRequired"
	CodeAuthFailure           = "AuthFailure"
	CodeUnauthorized          = "UnauthorizedOperation"
	CodeAccessDenied          = "AccessDeniedException"
	CodeUnrecognizedClient    = "UnrecognizedClientException"
	CodeDependencyViolation   = "DependencyViolation"
	CodeInvalidParameter      = "InvalidParameterException"
	CodeRequestLimitExceeded  = "RequestLimitExceeded"
	CodeThrottling            = "Throttling"
	CodeThrottlingException   = "ThrottlingException"
	CodeInternalError         = "InternalError"
	CodeServiceUnavailable    = "ServiceUnavailable"
	notFoundSuffix            = ".NotFound"
)

// ErrorCode returns the provider error code carried by err, or "" when err is not
// an api error.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsAPIError reports whether err came back from the provider, as opposed to a
// transport, credential or context failure.
func IsAPIError(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr)
}

// HasCode reports whether err carries one of codes.
func HasCode(err error, codes ...string) bool {
	code := ErrorCode(err)
	if code == "" {
		return false
	}
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// IsConflict matches "already exists" style responses to a create call.
func IsConflict(err error) bool {
	return HasCode(err, CodeConflict, CodeDuplicateResource, CodeResourceAlreadyExists, CodeEntityAlreadyExists)
}

// IsNotFound matches responses to deleting something that is already gone.
func IsNotFound(err error) bool {
	code := ErrorCode(err)
	if code == "" {
		return false
	}
	return code == CodeResourceNotFound || code == CodeNoSuchEntity || strings.HasSuffix(code, notFoundSuffix)
}

// IsOptInRequired matches calls against a region that is not enabled for the account.
func IsOptInRequired(err error) bool {
	return HasCode(err, CodeOptInRequired)
}

// IsRegionSkippable matches errors that mean the region cannot be configured with
// the credentials at hand.  The region is skipped instead of failing the run.
func IsRegionSkippable(err error) bool {
	return HasCode(err, CodeOptInRequired, CodeAuthFailure, CodeUnauthorized, CodeAccessDenied, CodeUnrecognizedClient)
}

// IsTransient matches errors worth retrying: throttling, provider side failures and
// anything that never reached the provider.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if !IsAPIError(err) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorFault() == smithy.FaultServer {
		return true
	}
	return HasCode(err, CodeRequestLimitExceeded, CodeThrottling, CodeThrottlingException, CodeInternalError, CodeServiceUnavailable)
}
