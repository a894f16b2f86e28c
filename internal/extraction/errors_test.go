package extraction

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
	"github.com/kafuicharbeleklu/SmartProcure/internal/i18n"
)

func TestUserMessage(t *testing.T) {
	msgs := i18n.For(internal.LangEN)

	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "missing key", err: ErrMissingAPIKey, want: msgs.MissingAPIKey},
		{name: "wrapped missing key", err: fmt.Errorf("init: %w", ErrMissingAPIKey), want: msgs.MissingAPIKey},
		{name: "invalid key", err: errors.New("googleapi: API_KEY_INVALID"), want: msgs.InvalidAPIKey},
		{name: "invalid key prose", err: errors.New("API key not valid. Please pass a valid API key."), want: msgs.InvalidAPIKey},
		{name: "restricted key", err: errors.New("rpc error: PERMISSION_DENIED"), want: msgs.RestrictedAPIKey},
		{name: "service disabled", err: errors.New("SERVICE_DISABLED for project"), want: msgs.RestrictedAPIKey},
		{name: "referer restriction", err: errors.New("requests from this referer are blocked"), want: msgs.RestrictedAPIKey},
		{name: "anything else", err: errors.New("connection reset"), want: msgs.TechnicalError},
		{name: "nil", err: nil, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := UserMessage(tc.err, msgs); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestStripJSONFences(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bare json", input: `{"offers":[]}`, want: `{"offers":[]}`},
		{name: "json fence", input: "```json\n{\"offers\":[]}\n```", want: `{"offers":[]}`},
		{name: "plain fence", input: "```\n{\"offers\":[]}\n```", want: `{"offers":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripJSONFences(tc.input); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
