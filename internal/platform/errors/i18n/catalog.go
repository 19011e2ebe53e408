// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// BaseLocale is served when nothing better matches the request.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var (
	supported = []language.Tag{
		language.MustParse(BaseLocale),
		language.MustParse("pt-BR"),
	}
	matcher = language.NewMatcher(supported)

	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{
		"en-US": {locale: "en-US", messages: enUS},
		"pt-BR": {locale: "pt-BR", messages: ptBR},
	}
	templates sync.Map // template source -> *template.Template
)

// ResolveLocale picks the best supported locale for an Accept-Language style
// preference list such as "pt-BR,pt;q=0.9,en;q=0.5".
func ResolveLocale(preference string) string {
	preference = strings.TrimSpace(preference)
	if preference == "" {
		return BaseLocale
	}
	tags, _, err := language.ParseAcceptLanguage(preference)
	if err != nil || len(tags) == 0 {
		return BaseLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return BaseLocale
	}
	return supported[index].String()
}

// GetCatalog returns the catalog for the given locale preference.
// Falls back to en-US if the locale is not supported.
func GetCatalog(locale string) *Catalog {
	resolved := ResolveLocale(locale)
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	if c, ok := catalogs[resolved]; ok {
		return c
	}
	return catalogs[BaseLocale]
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	src, ok := c.messages[code]
	if !ok {
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := parsed(src)
	if err != nil {
		return src
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return src
	}
	return buf.String()
}

func parsed(src string) (*template.Template, error) {
	if cached, ok := templates.Load(src); ok {
		return cached.(*template.Template), nil
	}
	t, err := template.New("msg").Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil, err
	}
	templates.Store(src, t)
	return t, nil
}
