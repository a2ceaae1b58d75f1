// Package i18n renders the user-facing texts produced by the server:
// live notifications and fallback suggestion reasons.
package i18n

import (
	"embed"
	"log"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

const (
	MsgNewRequest       = "NotifyNewRequest"
	MsgRequestAccepted  = "NotifyRequestAccepted"
	MsgRequestDeclined  = "NotifyRequestDeclined"
	MsgMeetingScheduled = "NotifyMeetingScheduled"
	MsgMeetingConfirmed = "NotifyMeetingConfirmed"
	MsgRescheduleAsked  = "NotifyRescheduleRequested"
	MsgNewMessage       = "NotifyNewMessage"
	MsgFallbackReason1  = "FallbackReasonCommonGround"
	MsgFallbackReason2  = "FallbackReasonFreshPerspective"
	MsgFallbackReason3  = "FallbackReasonGoodConversation"
	MsgFallbackReason4  = "FallbackReasonSayHello"
)

// FallbackReasons are the canned reasons attached to locally generated
// suggestions.
var FallbackReasons = []string{MsgFallbackReason1, MsgFallbackReason2, MsgFallbackReason3, MsgFallbackReason4}

// Translator is a thin wrapper around go-i18n's Bundle and Localizer.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	log             *log.Logger
}

// NewTranslator loads the embedded translations. An unparsable default
// locale falls back to English.
func NewTranslator(logger *log.Logger, defaultLocale string) *Translator {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.en.toml", "active.fr.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.Printf("i18n: failed to load %s: %v", file, err)
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
		log:             logger,
	}
}

// T renders the message identified by key for the given locale, falling
// back to the default locale and then to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		t.log.Printf("i18n: localize failed (key=%s, locales=%v): %v", key, languages, err)
		return key
	}
	return msg
}
