package ingest

import "strings"

// WoolHSCodes maps each wool category to its ten digit HS codes (chapter 51).
var WoolHSCodes = map[string][]string{
	"greasy_fine":           {"5101110002"},
	"greasy_medium":         {"5101110004"},
	"greasy_coarse":         {"5101110006"},
	"greasy_very_coarse":    {"5101110008"},
	"degreased_fine":        {"5101210002"},
	"degreased_medium":      {"5101210004"},
	"degreased_coarse":      {"5101210006"},
	"degreased_very_coarse": {"5101210008"},
	"carded":                {"5105100000"},
	"combed":                {"5105210000"},
	"yarn_carpet":           {"5106100101"},
	"yarn_85plus":           {"5109100001", "5109100009", "5109100019"},
	"yarn_less85":           {"5109900001", "5109900019"},
}

const OtherCategory = "other"

var categoryByCode = func() map[string]string {
	m := make(map[string]string)
	for cat, codes := range WoolHSCodes {
		for _, c := range codes {
			m[c] = cat
		}
	}
	return m
}()

// Category returns the wool category of an HS code, or "other".
func Category(hs string) string {
	if cat, ok := categoryByCode[strings.TrimSpace(hs)]; ok {
		return cat
	}
	return OtherCategory
}

// codeSet returns the HS codes admitted for categories. No categories means
// every wool code; unknown categories admit nothing.
func codeSet(categories []string) map[string]bool {
	set := make(map[string]bool)
	if len(categories) == 0 {
		for code := range categoryByCode {
			set[code] = true
		}
		return set
	}
	for _, cat := range categories {
		for _, code := range WoolHSCodes[cat] {
			set[code] = true
		}
	}
	return set
}

func ProcessingStage(category string) string {
	switch {
	case strings.Contains(category, "degreased"):
		return "Degreased/Scoured"
	case strings.Contains(category, "greasy"):
		return "Greasy"
	case strings.Contains(category, "carded"):
		return "Carded"
	case strings.Contains(category, "combed"):
		return "Combed/Tops"
	case strings.Contains(category, "yarn"):
		return "Yarn"
	}
	return "Other"
}

// MicronRange gives the fibre diameter band of a greasy or degreased category.
func MicronRange(category string) string {
	switch {
	case strings.Contains(category, "fine"):
		return "< 24.5"
	case strings.Contains(category, "medium"):
		return "24.5-31.4"
	case strings.Contains(category, "very_coarse"):
		return "> 35.4"
	case strings.Contains(category, "coarse"):
		return "31.4-35.4"
	}
	return "N/A"
}
