package rdf

import (
	"net/url"
	"strings"
)

// resolveIRI resolves a relative IRI against a base IRI according to RFC 3986.
func resolveIRI(baseStr, relative string) string {
	baseURL, err := url.Parse(baseStr)
	if err != nil {
		return joinIRI(baseStr, relative)
	}
	relURL, err := url.Parse(relative)
	if err != nil {
		return joinIRI(baseStr, relative)
	}
	if relURL.Scheme != "" {
		return relative
	}
	return baseURL.ResolveReference(relURL).String()
}

// joinIRI is the fallback for IRIs net/url refuses to parse.
func joinIRI(baseStr, relative string) string {
	if strings.HasPrefix(relative, "#") {
		if hash := strings.IndexByte(baseStr, '#'); hash >= 0 {
			baseStr = baseStr[:hash]
		}
		return baseStr + relative
	}
	if strings.HasSuffix(baseStr, "/") {
		return baseStr + relative
	}
	if lastSlash := strings.LastIndex(baseStr, "/"); lastSlash >= 0 {
		return baseStr[:lastSlash+1] + relative
	}
	return baseStr + "/" + relative
}
