// Package apperrors provides the structured error taxonomy shared across
// vectorkit's core engine and its HTTP/RPC surfaces.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: not-found / already-exists
//   - 2XX: validation
//   - 3XX: authn/authz
//   - 4XX: rate limiting
//   - 5XX: storage / indexing / backup
//   - 6XX: availability / internal
package apperrors

// Kind classifies an error for HTTP/RPC status mapping and operator triage.
type Kind string

const (
	KindNotFound                Kind = "NOT_FOUND"
	KindAlreadyExists           Kind = "ALREADY_EXISTS"
	KindInvalidDimensions       Kind = "INVALID_DIMENSIONS"
	KindInvalidFilter           Kind = "INVALID_FILTER"
	KindInvalidSearchParameters Kind = "INVALID_SEARCH_PARAMETERS"
	KindValidation              Kind = "VALIDATION"
	KindUnauthenticated         Kind = "UNAUTHENTICATED"
	KindPermissionDenied        Kind = "PERMISSION_DENIED"
	KindRateLimitExceeded       Kind = "RATE_LIMIT_EXCEEDED"
	KindStorageError            Kind = "STORAGE_ERROR"
	KindBackupError             Kind = "BACKUP_ERROR"
	KindIndexingError           Kind = "INDEXING_ERROR"
	KindServiceUnavailable      Kind = "SERVICE_UNAVAILABLE"
	KindInternal                Kind = "INTERNAL"
)

// Severity mirrors the taxonomy's operational weight.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Error codes used for the wire `error_code` field; several codes can share
// one Kind.
const (
	CodeDatasetNotFound = "ERR_101_DATASET_NOT_FOUND"
	CodeVectorNotFound  = "ERR_102_VECTOR_NOT_FOUND"
	CodeBackupNotFound  = "ERR_103_BACKUP_NOT_FOUND"
	CodeJobNotFound     = "ERR_104_JOB_NOT_FOUND"
	CodeTenantNotFound  = "ERR_105_TENANT_NOT_FOUND"
	CodeDatasetExists   = "ERR_110_DATASET_ALREADY_EXISTS"

	CodeInvalidDimensions   = "ERR_201_INVALID_DIMENSIONS"
	CodeInvalidFilter       = "ERR_202_INVALID_FILTER"
	CodeInvalidSearchParams = "ERR_203_INVALID_SEARCH_PARAMETERS"
	CodeValidation          = "ERR_204_VALIDATION"

	CodeUnauthenticated  = "ERR_301_UNAUTHENTICATED"
	CodePermissionDenied = "ERR_302_PERMISSION_DENIED"

	CodeRateLimitExceeded = "ERR_401_RATE_LIMIT_EXCEEDED"

	CodeStorageError  = "ERR_501_STORAGE_ERROR"
	CodeBackupError   = "ERR_502_BACKUP_ERROR"
	CodeIndexingError = "ERR_503_INDEXING_ERROR"

	CodeServiceUnavailable = "ERR_601_SERVICE_UNAVAILABLE"
	CodeInternal           = "ERR_602_INTERNAL"
)

// kindOf maps a wire code back to its Kind for classification helpers.
var kindOf = map[string]Kind{
	CodeDatasetNotFound:     KindNotFound,
	CodeVectorNotFound:      KindNotFound,
	CodeBackupNotFound:      KindNotFound,
	CodeJobNotFound:         KindNotFound,
	CodeTenantNotFound:      KindNotFound,
	CodeDatasetExists:       KindAlreadyExists,
	CodeInvalidDimensions:   KindInvalidDimensions,
	CodeInvalidFilter:       KindInvalidFilter,
	CodeInvalidSearchParams: KindInvalidSearchParameters,
	CodeValidation:          KindValidation,
	CodeUnauthenticated:     KindUnauthenticated,
	CodePermissionDenied:    KindPermissionDenied,
	CodeRateLimitExceeded:   KindRateLimitExceeded,
	CodeStorageError:        KindStorageError,
	CodeBackupError:         KindBackupError,
	CodeIndexingError:       KindIndexingError,
	CodeServiceUnavailable:  KindServiceUnavailable,
	CodeInternal:            KindInternal,
}

func kindFromCode(code string) Kind {
	if k, ok := kindOf[code]; ok {
		return k
	}
	return KindInternal
}

func severityFromKind(k Kind) Severity {
	switch k {
	case KindStorageError, KindServiceUnavailable:
		return SeverityFatal
	case KindIndexingError, KindBackupError:
		return SeverityWarning
	default:
		return SeverityError
	}
}

func retryableFromKind(k Kind) bool {
	switch k {
	case KindServiceUnavailable, KindRateLimitExceeded:
		return true
	default:
		return false
	}
}
