package schedule

import (
	"regexp"
	"strings"
)

// FragmentKind tags a Fragment.
type FragmentKind int

const (
	FragmentText FragmentKind = iota
	FragmentTag
	FragmentLink
)

func (k FragmentKind) String() string {
	switch k {
	case FragmentTag:
		return "tag"
	case FragmentLink:
		return "link"
	default:
		return "text"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k FragmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Fragment is one piece of annotated text. For tags Text excludes the
// leading '#'; for links Href is the target.
type Fragment struct {
	Kind FragmentKind `json:"kind"`
	Text string       `json:"text"`
	Href string       `json:"href,omitempty"`
}

// tagTrailer is punctuation that ends a tag rather than belonging to it.
const tagTrailer = ".,;:!?)"

// AnnotateLine splits line on single spaces and marks "#tag" tokens and
// http(s) links. Spaces are kept inside the surrounding text fragments, so
// concatenating the fragment sources reproduces line.
func AnnotateLine(line string) []Fragment {
	var out []Fragment
	for i, tok := range strings.Split(line, " ") {
		if i > 0 {
			out = appendText(out, " ")
		}
		switch {
		case len(tok) > 1 && strings.HasPrefix(tok, "#"):
			name := strings.TrimRight(tok[1:], tagTrailer)
			if name == "" {
				out = appendText(out, tok)
				continue
			}
			out = append(out, Fragment{Kind: FragmentTag, Text: name})
			out = appendText(out, tok[1+len(name):])
		case strings.HasPrefix(tok, "http://") || strings.HasPrefix(tok, "https://"):
			out = append(out, Fragment{Kind: FragmentLink, Text: tok, Href: tok})
		default:
			out = appendText(out, tok)
		}
	}
	return out
}

var (
	schemeURL = regexp.MustCompile(`(?i)\b(https?|ftp|file)://[-A-Z0-9+&@#/%?=~_|!:,.;]*[-A-Z0-9+&@#/%=~_|]`)
	bareWWW   = regexp.MustCompile(`(?im)(^|[^/])(www\.\S+(\b|$))`)
)

// Linkify finds URLs anywhere in text, regardless of whitespace: any
// scheme:// URL, and bare "www." hosts which link to http://.
func Linkify(text string) []Fragment {
	var out []Fragment
	last := 0
	for _, loc := range schemeURL.FindAllStringIndex(text, -1) {
		out = append(out, linkifyWWW(text[last:loc[0]])...)
		u := text[loc[0]:loc[1]]
		out = append(out, Fragment{Kind: FragmentLink, Text: u, Href: u})
		last = loc[1]
	}
	out = append(out, linkifyWWW(text[last:])...)
	return mergeText(out)
}

func linkifyWWW(text string) []Fragment {
	var out []Fragment
	last := 0
	for _, m := range bareWWW.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[4], m[5]
		out = appendText(out, text[last:start])
		host := text[start:end]
		out = append(out, Fragment{Kind: FragmentLink, Text: host, Href: "http://" + host})
		last = end
	}
	return appendText(out, text[last:])
}

func appendText(out []Fragment, s string) []Fragment {
	if s == "" {
		return out
	}
	if n := len(out); n > 0 && out[n-1].Kind == FragmentText {
		out[n-1].Text += s
		return out
	}
	return append(out, Fragment{Kind: FragmentText, Text: s})
}

func mergeText(in []Fragment) []Fragment {
	var out []Fragment
	for _, f := range in {
		if f.Kind == FragmentText {
			out = appendText(out, f.Text)
			continue
		}
		out = append(out, f)
	}
	return out
}
