package extraction

import (
	"errors"
	"regexp"

	"github.com/kafuicharbeleklu/SmartProcure/internal/i18n"
)

var (
	// ErrMissingAPIKey means no Gemini key was configured at all.
	ErrMissingAPIKey = errors.New("extraction: missing gemini api key")
	// ErrEmptyResponse means the model returned no text candidate.
	ErrEmptyResponse = errors.New("extraction: empty model response")
	// ErrInvalidResponse means the model text was not valid JSON. Retrying
	// the same parse would not help, so this is never retried.
	ErrInvalidResponse = errors.New("extraction: invalid JSON from model")
)

var (
	reInvalidKey    = regexp.MustCompile(`(?i)API_KEY_INVALID|API key not valid|invalid api key`)
	reRestrictedKey = regexp.MustCompile(`(?i)PERMISSION_DENIED|SERVICE_DISABLED|API_KEY_SERVICE_BLOCKED|referer|referrer`)
)

// UserMessage maps an extraction failure to a localized message, separating
// credential problems from generic technical failure.
func UserMessage(err error, msgs i18n.Messages) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrMissingAPIKey) {
		return msgs.MissingAPIKey
	}
	raw := err.Error()
	if reInvalidKey.MatchString(raw) {
		return msgs.InvalidAPIKey
	}
	if reRestrictedKey.MatchString(raw) {
		return msgs.RestrictedAPIKey
	}
	return msgs.TechnicalError
}
