package apierr

import (
	"net/http"
	"strings"
)

// Kind is the business-level category of a failed VaultSens call.
// The set is closed: Classify never returns anything outside Kinds().
type Kind string

const (
	KindFileTooLarge           Kind = "FILE_TOO_LARGE"
	KindStorageLimit           Kind = "STORAGE_LIMIT"
	KindFileCountLimit         Kind = "FILE_COUNT_LIMIT"
	KindMimeTypeNotAllowed     Kind = "MIME_TYPE_NOT_ALLOWED"
	KindCompressionNotAllowed  Kind = "COMPRESSION_NOT_ALLOWED"
	KindSubscriptionInactive   Kind = "SUBSCRIPTION_INACTIVE"
	KindFolderCountLimit       Kind = "FOLDER_COUNT_LIMIT"
	KindEmailAlreadyRegistered Kind = "EMAIL_ALREADY_REGISTERED"
	KindEmailNotVerified       Kind = "EMAIL_NOT_VERIFIED"
	KindInvalidCredentials     Kind = "INVALID_CREDENTIALS"
	KindInvalidOTP             Kind = "INVALID_OTP"
	KindUnauthorized           Kind = "UNAUTHORIZED"
	KindNotFound               Kind = "NOT_FOUND"
	KindUnknown                Kind = "UNKNOWN"
)

var allKinds = []Kind{
	KindFileTooLarge,
	KindStorageLimit,
	KindFileCountLimit,
	KindMimeTypeNotAllowed,
	KindCompressionNotAllowed,
	KindSubscriptionInactive,
	KindFolderCountLimit,
	KindEmailAlreadyRegistered,
	KindEmailNotVerified,
	KindInvalidCredentials,
	KindInvalidOTP,
	KindUnauthorized,
	KindNotFound,
	KindUnknown,
}

// Kinds returns every Kind in declaration order. The slice is a copy.
func Kinds() []Kind {
	return append([]Kind(nil), allKinds...)
}

// Valid reports whether k belongs to the closed set.
func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Classifier maps an HTTP status and a server message onto a Kind.
// Implementations must be pure and total.
type Classifier interface {
	Classify(status int, message string) Kind
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(status int, message string) Kind

// Classify implements Classifier.
func (f ClassifierFunc) Classify(status int, message string) Kind {
	return f(status, message)
}

// DefaultClassifier applies the message-matching rules of Classify.
var DefaultClassifier Classifier = ClassifierFunc(Classify)

// Classify resolves the Kind for a failed call.
//
// The server reuses a handful of statuses for several business errors and
// only the message text tells them apart, so rules are checked in a fixed
// order and the first match wins. Message matching is a case-insensitive
// substring test. A 403 without a known keyword is KindUnknown.
func Classify(status int, message string) Kind {
	m := strings.ToLower(message)
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(m, s) {
				return true
			}
		}
		return false
	}

	switch {
	case status == http.StatusRequestEntityTooLarge && has("storage limit"):
		return KindStorageLimit
	case status == http.StatusRequestEntityTooLarge:
		return KindFileTooLarge
	case status == http.StatusUnsupportedMediaType:
		return KindMimeTypeNotAllowed
	case status == http.StatusPaymentRequired:
		return KindSubscriptionInactive
	case status == http.StatusForbidden && has("compression"):
		return KindCompressionNotAllowed
	case status == http.StatusForbidden && has("folder"):
		return KindFolderCountLimit
	case status == http.StatusForbidden && has("file", "maximum"):
		return KindFileCountLimit
	case status == http.StatusForbidden && has("email"):
		return KindEmailNotVerified
	case status == http.StatusBadRequest && has("already registered"):
		return KindEmailAlreadyRegistered
	case status == http.StatusBadRequest && has("invalid email or password", "invalid credentials"):
		return KindInvalidCredentials
	case status == http.StatusBadRequest && has("otp"):
		return KindInvalidOTP
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	}
	return KindUnknown
}
