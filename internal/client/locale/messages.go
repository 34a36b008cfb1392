package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys. They double as the English text.
const (
	MsgLoginRequired  = "Please login to access %s"
	MsgCodeSent       = "Verification code sent to %s"
	MsgWelcome        = "Welcome, %s"
	MsgLoggedOut      = "You have been logged out"
	MsgLoginCancelled = "Login cancelled"
)

var messages = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	entries := map[language.Tag]map[string]string{
		language.English: {
			MsgLoginRequired:  MsgLoginRequired,
			MsgCodeSent:       MsgCodeSent,
			MsgWelcome:        MsgWelcome,
			MsgLoggedOut:      MsgLoggedOut,
			MsgLoginCancelled: MsgLoginCancelled,
		},
		language.Telugu: {
			MsgLoginRequired:  "%s ను ఉపయోగించడానికి దయచేసి లాగిన్ అవ్వండి",
			MsgCodeSent:       "ధృవీకరణ కోడ్ %s కు పంపబడింది",
			MsgWelcome:        "స్వాగతం, %s",
			MsgLoggedOut:      "మీరు లాగ్ అవుట్ అయ్యారు",
			MsgLoginCancelled: "లాగిన్ రద్దు చేయబడింది",
		},
		language.Hindi: {
			MsgLoginRequired:  "%s का उपयोग करने के लिए कृपया लॉगिन करें",
			MsgCodeSent:       "सत्यापन कोड %s पर भेजा गया",
			MsgWelcome:        "स्वागत है, %s",
			MsgLoggedOut:      "आप लॉग आउट हो गए हैं",
			MsgLoginCancelled: "लॉगिन रद्द किया गया",
		},
	}

	for tag, msgs := range entries {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}
