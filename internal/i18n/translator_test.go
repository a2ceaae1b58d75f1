package i18n

import (
	"testing"

	"github.com/npezzotti/meetup/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTranslator(t *testing.T) {
	tr := NewTranslator(testutil.TestLogger(t), "en")

	tcases := []struct {
		name   string
		locale string
		key    string
		data   map[string]any
		want   string
	}{
		{"default locale", "", MsgNewRequest, map[string]any{"Name": "Alice"}, "Alice wants to meet you"},
		{"french", "fr", MsgNewMessage, map[string]any{"Name": "Bob"}, "Nouveau message de Bob"},
		{"unknown locale falls back", "de", MsgMeetingConfirmed, map[string]any{"Name": "Bob"}, "Bob confirmed your meeting"},
		{"unknown key", "en", "NoSuchKey", nil, "NoSuchKey"},
		{"empty key", "en", "", nil, ""},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tr.T(tc.locale, tc.key, tc.data))
		})
	}
}

func TestFallbackReasonsAreTranslated(t *testing.T) {
	tr := NewTranslator(testutil.TestLogger(t), "en")
	for _, key := range FallbackReasons {
		assert.NotEqual(t, key, tr.T("", key, nil))
	}
}

func TestNewTranslatorBadLocale(t *testing.T) {
	tr := NewTranslator(testutil.TestLogger(t), "not a locale!!")
	assert.Equal(t, "en", tr.defaultLanguage.String())
}
