// Package locale keeps the UI language preference and the handful of
// localized notices the client prints itself.
package locale

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/citizenportal/internal/client/repositories/metadata"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Key is the metadata key of the persisted language code.
const Key = "language"

// Default is used when nothing valid is stored.
var Default = language.English

// Supported lists the UI languages: English, Telugu, Hindi.
var Supported = []language.Tag{language.English, language.Telugu, language.Hindi}

var ErrUnsupported = errors.New("unsupported language")

// Parse maps a language code to one of the Supported tags. Regional variants
// such as "en-IN" resolve to their base language.
func Parse(code string) (language.Tag, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return Default, fmt.Errorf("%w: %q", ErrUnsupported, code)
	}
	base, _ := tag.Base()
	for _, sup := range Supported {
		if sb, _ := sup.Base(); sb == base {
			return sup, nil
		}
	}
	return Default, fmt.Errorf("%w: %q", ErrUnsupported, code)
}

// Code returns the short code stored for tag ("en", "te", "hi").
func Code(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// Preferences reads and writes the language preference.
type Preferences struct {
	repo metadata.Repository
}

func NewPreferences(repo metadata.Repository) *Preferences {
	return &Preferences{repo: repo}
}

// Load returns the stored language, or Default when it is absent or not
// supported. Only storage failures are reported as errors.
func (p *Preferences) Load(ctx context.Context) (language.Tag, error) {
	v, err := p.repo.Get(ctx, Key)
	if err != nil {
		return Default, err
	}
	if v == nil {
		return Default, nil
	}
	tag, err := Parse(string(v))
	if err != nil {
		return Default, nil
	}
	return tag, nil
}

// Save validates code and persists it.
func (p *Preferences) Save(ctx context.Context, code string) (language.Tag, error) {
	tag, err := Parse(code)
	if err != nil {
		return Default, err
	}
	if err := p.repo.Set(ctx, Key, []byte(Code(tag))); err != nil {
		return Default, err
	}
	return tag, nil
}

// Printer returns a message printer for tag backed by the client catalog.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(messages))
}
