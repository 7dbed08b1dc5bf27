package wire

// Status represents a response status code.
type Status uint8

const (
	// StatusSuccess indicates the operation completed successfully.
	StatusSuccess Status = 0

	// StatusBadRequest indicates a malformed or invalid request.
	StatusBadRequest Status = 1

	// StatusNotFound indicates the target affordance doesn't exist.
	StatusNotFound Status = 2

	// StatusNotAllowed indicates the affordance doesn't support the operation,
	// e.g. writing a read-only property.
	StatusNotAllowed Status = 3

	// StatusOutOfRange indicates the requested block lies past the document end.
	StatusOutOfRange Status = 4

	// StatusPreconditionFailed indicates the document changed since the
	// transfer started (ETag mismatch).
	StatusPreconditionFailed Status = 5

	// StatusDocumentInvalid indicates the Thing cannot be rendered.
	StatusDocumentInvalid Status = 6

	// StatusInternal indicates an unexpected server error.
	StatusInternal Status = 7
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusBadRequest:
		return "BAD_REQUEST"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusNotAllowed:
		return "NOT_ALLOWED"
	case StatusOutOfRange:
		return "OUT_OF_RANGE"
	case StatusPreconditionFailed:
		return "PRECONDITION_FAILED"
	case StatusDocumentInvalid:
		return "DOCUMENT_INVALID"
	case StatusInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// IsServerError returns true for failures caused by the device rather
// than the request.
func (s Status) IsServerError() bool {
	return s == StatusDocumentInvalid || s == StatusInternal
}
