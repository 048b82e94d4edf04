package translate

// iso639 is the set of two-letter codes Whisper can emit and the web
// engines broadly accept. Engines with a narrower catalogue declare their
// own subset.
var iso639 = map[string]struct{}{
	"af": {}, "am": {}, "ar": {}, "as": {}, "az": {}, "ba": {}, "be": {},
	"bg": {}, "bn": {}, "bo": {}, "br": {}, "bs": {}, "ca": {}, "cs": {},
	"cy": {}, "da": {}, "de": {}, "el": {}, "en": {}, "es": {}, "et": {},
	"eu": {}, "fa": {}, "fi": {}, "fo": {}, "fr": {}, "gl": {}, "gu": {},
	"ha": {}, "he": {}, "hi": {}, "hr": {}, "ht": {}, "hu": {}, "hy": {},
	"id": {}, "is": {}, "it": {}, "ja": {}, "jw": {}, "ka": {}, "kk": {},
	"km": {}, "kn": {}, "ko": {}, "la": {}, "lb": {}, "lo": {}, "lt": {},
	"lv": {}, "mg": {}, "mi": {}, "mk": {}, "ml": {}, "mn": {}, "mr": {},
	"ms": {}, "mt": {}, "my": {}, "ne": {}, "nl": {}, "nn": {}, "no": {},
	"oc": {}, "pa": {}, "pl": {}, "ps": {}, "pt": {}, "ro": {}, "ru": {},
	"sa": {}, "sd": {}, "si": {}, "sk": {}, "sl": {}, "sn": {}, "so": {},
	"sq": {}, "sr": {}, "su": {}, "sv": {}, "sw": {}, "ta": {}, "te": {},
	"tg": {}, "th": {}, "tk": {}, "tl": {}, "tr": {}, "tt": {}, "uk": {},
	"ur": {}, "uz": {}, "vi": {}, "yi": {}, "yo": {}, "zh": {},
}

// libreLanguages is the catalogue a stock LibreTranslate instance serves.
var libreLanguages = map[string]struct{}{
	"ar": {}, "az": {}, "bg": {}, "bn": {}, "ca": {}, "cs": {}, "da": {},
	"de": {}, "el": {}, "en": {}, "eo": {}, "es": {}, "et": {}, "eu": {},
	"fa": {}, "fi": {}, "fr": {}, "ga": {}, "gl": {}, "he": {}, "hi": {},
	"hu": {}, "id": {}, "it": {}, "ja": {}, "ko": {}, "lt": {}, "lv": {},
	"ms": {}, "nb": {}, "nl": {}, "pl": {}, "pt": {}, "ro": {}, "ru": {},
	"sk": {}, "sl": {}, "sq": {}, "sr": {}, "sv": {}, "th": {}, "tl": {},
	"tr": {}, "uk": {}, "ur": {}, "vi": {}, "zh": {},
}

// RTL is the set of languages rendered right-to-left; the caption composer
// applies bidi reordering for them.
var RTL = map[string]struct{}{
	"ar": {}, "fa": {}, "he": {}, "ps": {}, "sd": {}, "ur": {}, "yi": {},
}

// IsRTL reports whether lang is written right-to-left.
func IsRTL(lang string) bool {
	_, ok := RTL[lang]
	return ok
}
