package drs

import "fmt"

// frequencyToOpenSearch maps a raw DRS frequency token to the value the
// OpenSearch `frequency` facet expects.
var frequencyToOpenSearch = map[string]string{
	"mon":                        "month",
	"month":                      "month",
	"yr":                         "year",
	"year":                       "year",
	"day":                        "day",
	"satellite-orbit-frequency":  "satellite-orbit-frequency",
	"5-days":                     "5 days",
	"8-days":                     "8 days",
	"15-days":                    "15 days",
	"13-yrs":                     "13 years",
	"5-yrs":                      "5 years",
	"climatology":                "climatology",
}

// NormalizeFrequency converts a raw DRS frequency token (as it appears in a
// dotted dataset id, e.g. "mon", "5-days") into the token the OpenSearch
// `frequency` facet uses (e.g. "month", "5 days"). "mon" and "month" are
// synonyms and both normalise to "month".
func NormalizeFrequency(token string) (string, error) {
	if v, ok := frequencyToOpenSearch[token]; ok {
		return v, nil
	}
	return "", fmt.Errorf("drs: unknown time frequency token: %q", token)
}

// frequencyAdjective renders a frequency token as the adjective used in a
// synthesised human title, e.g. "day" -> "daily", "5-days" -> "5-daily".
var frequencyAdjective = map[string]string{
	"day":                        "daily",
	"mon":                        "monthly",
	"month":                      "monthly",
	"yr":                         "yearly",
	"year":                       "yearly",
	"5-days":                     "5-daily",
	"8-days":                     "8-daily",
	"15-days":                    "15-daily",
	"13-yrs":                     "13-yearly",
	"5-yrs":                      "5-yearly",
	"climatology":                "climatological",
	"satellite-orbit-frequency":  "orbit-frequency",
}

// FrequencyAdjective renders a raw DRS frequency token as its adjectival
// form, used by facade title synthesis.
func FrequencyAdjective(token string) string {
	if v, ok := frequencyAdjective[token]; ok {
		return v
	}
	return token
}
