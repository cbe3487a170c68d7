package draw

import (
	"net/url"
	"strings"
)

// ParseLists reads the participants and outcomes query parameters. Each is a
// comma-separated list of (possibly percent-encoded) entries; segments are
// trimmed and empty ones dropped. A list that ends up empty falls back to the
// matching list in defaults.
func ParseLists(query url.Values, defaults Preset) Preset {
	return Preset{
		Participants: parseList(query.Get(ListParticipants), defaults.Participants),
		Outcomes:     parseList(query.Get(ListOutcomes), defaults.Outcomes),
	}
}

func parseList(raw string, fallback []string) []string {
	var values []string

	for _, segment := range strings.Split(raw, ",") {
		segment = strings.TrimSpace(segment)

		if decoded, err := url.PathUnescape(segment); err == nil {
			segment = strings.TrimSpace(decoded)
		}

		if segment != "" {
			values = append(values, segment)
		}
	}

	if len(values) == 0 {
		return append([]string(nil), fallback...)
	}

	return values
}

// ShareURL appends both lists to base as query parameters. Any query or
// fragment already on base is dropped.
func ShareURL(base *url.URL, p Preset) string {
	u := *base
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""

	var b strings.Builder

	b.WriteString(u.String())
	b.WriteString("?" + ListParticipants + "=")
	b.WriteString(encodeList(p.Participants))
	b.WriteString("&" + ListOutcomes + "=")
	b.WriteString(encodeList(p.Outcomes))

	return b.String()
}

func encodeList(values []string) string {
	encoded := make([]string, len(values))
	for i, v := range values {
		encoded[i] = encodeComponent(v)
	}
	return strings.Join(encoded, ",")
}

// encodeComponent escapes like a browser's encodeURIComponent, using %20
// rather than + for spaces.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
