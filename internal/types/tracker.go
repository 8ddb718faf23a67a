package types

import (
	"net"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"tremote/internal/sanitizer"
)

type Tracker struct {
	ID       int    `json:"id"`
	Announce string `json:"announce"`
	Scrape   string `json:"scrape,omitempty"`
	Tier     int    `json:"tier"`
}

// Domain returns the registrable part of the announce host, e.g.
// "tracker.ubuntu.com" becomes "ubuntu.com". Unparseable URLs and hosts
// carrying control, escape or bidi characters yield "".
func (t Tracker) Domain() string {
	u, err := url.Parse(strings.TrimSpace(t.Announce))
	if err != nil || u.Host == "" {
		return ""
	}
	host := u.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" || !utf8.ValidString(host) || sanitizer.Line(host) != host {
		return ""
	}
	return DomainName(strings.ToLower(host))
}

// DomainName drops the leading label of hosts with more than one dot.
func DomainName(host string) string {
	dot := strings.Index(host, ".")
	if dot != strings.LastIndex(host, ".") {
		host = host[dot+1:]
	}
	return host
}

// ReadableDomain turns "ubuntu.com" into "Ubuntu".
func ReadableDomain(name string) string {
	if name == "" {
		return name
	}
	first, size := utf8.DecodeRuneInString(name)
	if first != utf8.RuneError {
		name = string(unicode.ToUpper(first)) + name[size:]
	}
	if dot := strings.Index(name, "."); dot != -1 {
		name = name[:dot]
	}
	return name
}
