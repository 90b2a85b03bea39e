// Package lang holds the static table of supported language codes.
//
// The table is the set of labels the line classifier can emit. It is fixed at
// compile time: writers are created for every entry at startup, and labels
// outside the table are rejected during record processing.
package lang

import "sort"

// Codes lists every supported language code, sorted.
var Codes = []string{
	"af", "als", "am", "an", "ar", "arz", "as", "ast", "av", "az",
	"azb", "ba", "bar", "bcl", "be", "bg", "bh", "bn", "bo", "bpy",
	"br", "bs", "bxr", "ca", "cbk", "ce", "ceb", "ckb", "co", "cs",
	"cv", "cy", "da", "de", "diq", "dsb", "dty", "dv", "el", "eml",
	"en", "eo", "es", "et", "eu", "fa", "fi", "fr", "frr", "fy",
	"ga", "gd", "gl", "gn", "gom", "gu", "gv", "he", "hi", "hif",
	"hr", "hsb", "ht", "hu", "hy", "ia", "id", "ie", "ilo", "io",
	"is", "it", "ja", "jbo", "jv", "ka", "kk", "km", "kn", "ko",
	"krc", "ku", "kv", "kw", "ky", "la", "lb", "lez", "li", "lmo",
	"lo", "lrc", "lt", "lv", "mai", "mg", "mhr", "min", "mk", "ml",
	"mn", "mr", "mrj", "ms", "mt", "mwl", "my", "myv", "mzn", "nah",
	"nap", "nds", "ne", "new", "nl", "nn", "no", "oc", "or", "os",
	"pa", "pam", "pfl", "pl", "pms", "pnb", "ps", "pt", "qu", "rm",
	"ro", "ru", "rue", "sa", "sah", "sc", "scn", "sco", "sd", "sh",
	"si", "sk", "sl", "so", "sq", "sr", "su", "sv", "sw", "ta",
	"te", "tg", "th", "tk", "tl", "tr", "tt", "tyv", "ug", "uk",
	"ur", "uz", "vec", "vep", "vi", "vls", "vo", "wa", "war", "wuu",
	"xal", "xmf", "yi", "yo", "yue", "zh",
}

var codeSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(Codes))
	for _, c := range Codes {
		s[c] = struct{}{}
	}
	return s
}()

// Supported reports whether code is in the supported-language table.
func Supported(code string) bool {
	_, ok := codeSet[code]
	return ok
}

// Count returns the number of supported languages.
func Count() int {
	return len(Codes)
}

func init() {
	// The table is consumed in sorted order when creating per-language files;
	// keep the invariant even if entries are added out of place.
	sort.Strings(Codes)
}
