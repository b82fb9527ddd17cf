package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrReferenceNotFound ErrCode = "REFERENCE_NOT_FOUND"
	ErrAlreadyEnrolled   ErrCode = "ALREADY_ENROLLED"
	ErrReportNotReady    ErrCode = "REPORT_NOT_READY"

	// ─── Scheduling conflicts ──────────────────────────────────────────
	ErrTeacherConflict           ErrCode = "TEACHER_CONFLICT"
	ErrGroupConflict             ErrCode = "GROUP_CONFLICT"
	ErrRoomConflict              ErrCode = "ROOM_CONFLICT"
	ErrCapacityConflict          ErrCode = "CAPACITY_CONFLICT"
	ErrStudentOverlapConflict    ErrCode = "STUDENT_OVERLAP_CONFLICT"
	ErrEnrollmentOverlapConflict ErrCode = "ENROLLMENT_OVERLAP_CONFLICT"
	ErrSchedulingBusy            ErrCode = "SCHEDULING_BUSY"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrReferenceNotFound:
		return "A referenced record does not exist."
	case ErrAlreadyEnrolled:
		return "The student is already enrolled in this module."
	case ErrReportNotReady:
		return "No conflict report has been generated yet."

	// ─── Scheduling conflicts ──────────────────────────────────────────
	case ErrTeacherConflict:
		return "The teacher is already scheduled at this timeslot."
	case ErrGroupConflict:
		return "The group is already scheduled at this timeslot."
	case ErrRoomConflict:
		return "The room is already booked at this timeslot."
	case ErrCapacityConflict:
		return "The room is too small for the group."
	case ErrStudentOverlapConflict:
		return "Some students already have a class at this timeslot."
	case ErrEnrollmentOverlapConflict:
		return "The student already has a class at one of this module's timeslots."
	case ErrSchedulingBusy:
		return "The timetable is being modified. Please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
