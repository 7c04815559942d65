package domain

import "errors"

// ErrAlreadyExists is an error thrown when entity already exists
var ErrAlreadyExists = errors.New("already exists")

// ErrDuplicateIdempotencyKey is an error thrown when an idempotency key is reused for a different request
var ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

// ErrSessionNotFound is an error thrown when session is not found
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionNotUploading is an error thrown when session is not accepting uploads
var ErrSessionNotUploading = errors.New("session not uploading")

// ErrSessionExpired is an error thrown when session is past its deadline
var ErrSessionExpired = errors.New("session expired")

// ErrInvalidPartNumber is an error thrown when part number is outside the declared range
var ErrInvalidPartNumber = errors.New("invalid part number")

// ErrPartNotFound is an error thrown when a recorded part is not found
var ErrPartNotFound = errors.New("part not found")

// ErrDuplicatePart is an error thrown when a part number is recorded twice with different etags
var ErrDuplicatePart = errors.New("duplicate part")

// ErrIncompleteParts is an error thrown when parts are missing or non-contiguous
var ErrIncompleteParts = errors.New("incomplete parts")

// ErrMismatchETag is an error thrown when etags mismatch
var ErrMismatchETag = errors.New("mismatched ETag")

// ErrSizeMismatch is an error thrown when sizes mismatch
var ErrSizeMismatch = errors.New("size mismatch")

// ErrObjectNotFound is an error thrown when the storage object does not exist
var ErrObjectNotFound = errors.New("object not found")

// ErrFileSizeTooBig is an error thrown when file size is too big
var ErrFileSizeTooBig = errors.New("file size too big")

// ErrFileSizeTooSmall is an error thrown when file size is too small
var ErrFileSizeTooSmall = errors.New("file size too small")

// ErrOperationNotFound is an error thrown when operation is not found
var ErrOperationNotFound = errors.New("operation not found")

// ErrOutboxMessageNotFound is an error thrown when outbox message is not found
var ErrOutboxMessageNotFound = errors.New("outbox message not found")

// ErrFinalizeLogNotFound is an error thrown when finalize log entry is not found
var ErrFinalizeLogNotFound = errors.New("finalize log not found")

// ErrFinalizeInFlight is an error thrown when a finalize call is already pending for the same key
var ErrFinalizeInFlight = errors.New("finalize in flight")

// ErrOutcomeUnknown marks a remote call failure where the request may still
// have taken effect, such as a timeout or reset connection after the request
// went out
var ErrOutcomeUnknown = errors.New("call outcome unknown")

// ErrInvalidSourceURL is an error thrown when a download source URL is not a valid http(s) URL
var ErrInvalidSourceURL = errors.New("invalid source url")

// ErrDownloadNotFound is an error thrown when external download is not found
var ErrDownloadNotFound = errors.New("external download not found")

// ErrDeliveryNotFound is an error thrown when webhook delivery is not found
var ErrDeliveryNotFound = errors.New("webhook delivery not found")

// ErrFileAssetNotFound is an error thrown when file asset is not found
var ErrFileAssetNotFound = errors.New("file asset not found")

// ErrRetriesExhausted is an error thrown when the retry budget is spent
var ErrRetriesExhausted = errors.New("retries exhausted")
