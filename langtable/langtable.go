// Package langtable provides a static registry of language display names
// used to render human-readable language names into model prompts.
package langtable

import "strings"

// Registry contains canonical language display names, keyed by ISO 639-1
// code (plus a few common locale variants). Locale variants not listed
// here are resolved in Resolve() via normalization and base fallback.
var Registry = map[string]string{
	"af":    "Afrikaans",
	"am":    "Amharic",
	"ar":    "Arabic",
	"az":    "Azerbaijani",
	"be":    "Belarusian",
	"bg":    "Bulgarian",
	"bn":    "Bengali",
	"bs":    "Bosnian",
	"ca":    "Catalan",
	"cs":    "Czech",
	"cy":    "Welsh",
	"da":    "Danish",
	"de":    "German",
	"el":    "Greek",
	"en":    "English",
	"en-GB": "English (UK)",
	"en-US": "English (US)",
	"es":    "Spanish",
	"es-MX": "Spanish (Mexico)",
	"et":    "Estonian",
	"eu":    "Basque",
	"fa":    "Persian",
	"fi":    "Finnish",
	"fr":    "French",
	"fr-CA": "French (Canada)",
	"ga":    "Irish",
	"gl":    "Galician",
	"gu":    "Gujarati",
	"he":    "Hebrew",
	"hi":    "Hindi",
	"hr":    "Croatian",
	"hu":    "Hungarian",
	"hy":    "Armenian",
	"id":    "Indonesian",
	"is":    "Icelandic",
	"it":    "Italian",
	"ja":    "Japanese",
	"ka":    "Georgian",
	"kk":    "Kazakh",
	"km":    "Khmer",
	"ko":    "Korean",
	"lo":    "Lao",
	"lt":    "Lithuanian",
	"lv":    "Latvian",
	"mk":    "Macedonian",
	"ml":    "Malayalam",
	"mn":    "Mongolian",
	"mr":    "Marathi",
	"ms":    "Malay",
	"mt":    "Maltese",
	"my":    "Burmese",
	"nb":    "Norwegian Bokmål",
	"ne":    "Nepali",
	"nl":    "Dutch",
	"nn":    "Norwegian Nynorsk",
	"no":    "Norwegian",
	"pa":    "Punjabi",
	"pl":    "Polish",
	"ps":    "Pashto",
	"pt":    "Portuguese",
	"pt-BR": "Portuguese (Brazil)",
	"pt-PT": "Portuguese (Portugal)",
	"ro":    "Romanian",
	"ru":    "Russian",
	"si":    "Sinhala",
	"sk":    "Slovak",
	"sl":    "Slovenian",
	"sq":    "Albanian",
	"sr":    "Serbian",
	"sv":    "Swedish",
	"sw":    "Swahili",
	"ta":    "Tamil",
	"te":    "Telugu",
	"th":    "Thai",
	"tr":    "Turkish",
	"uk":    "Ukrainian",
	"ur":    "Urdu",
	"uz":    "Uzbek",
	"vi":    "Vietnamese",
	"xh":    "Xhosa",
	"yo":    "Yoruba",
	"zh":    "Chinese",
	"zh-CN": "Chinese (Simplified)",
	"zh-TW": "Chinese (Traditional)",
	"zu":    "Zulu",
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns the best-effort display name for a language code,
// supporting variants like pt_BR, pt-BR, and locale fallbacks.
// Unknown codes are returned as-is, so prompts always have something
// to show.
func Resolve(lang string) string {
	if name, ok := Registry[lang]; ok {
		return name
	}
	normalized := canonicalize(lang)
	if name, ok := Registry[normalized]; ok {
		return name
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if name, ok := Registry[parts[0]]; ok {
			return name
		}
	}
	return lang
}

// Codes returns all registered language codes in no particular order.
func Codes() []string {
	codes := make([]string, 0, len(Registry))
	for code := range Registry {
		codes = append(codes, code)
	}
	return codes
}
