package fetch

import "strings"

// wafStatuses are the HTTP status codes treated as WAF-like on their own.
var wafStatuses = map[int]bool{
	403: true, 406: true, 409: true, 429: true, 503: true,
}

// wafHeaderMarkers are case-folded substrings of response header *names*
// that indicate a WAF/CDN security layer intercepted the request.
var wafHeaderMarkers = []string{
	"cf-ray", "cf-cache-status", "cf-chl-bypass", "x-sucuri-id", "x-sucuri-block",
	"x-amzn-waf-id", "x-amz-cf-id", "x-iinfo", "incapsula", "x-cdn", "akamai",
	"x-akamai", "x-akamai-transformed", "x-waf", "x-firewall",
}

// wafBodyMarkers are case-folded substrings checked against the first 2048
// bytes of the response body.
var wafBodyMarkers = []string{
	"checking your browser", "just a moment", "ddos protection by",
	"web application firewall", "access denied", "you are being rate limited",
	"/cdn-cgi/l/chk_jschl", "waf",
}

const wafBodySniffLen = 2048

// IsWAFLike reports whether a response looks like it was intercepted by a
// WAF or CDN security layer: the status is in a fixed hostile-status set,
// a response header *name* contains a marker substring, or the first 2048
// bytes of the body (case-folded) contain a marker substring.
func IsWAFLike(r Result) bool {
	if wafStatuses[r.Status] {
		return true
	}

	for name := range r.Headers {
		lower := lowerHeader(name)
		for _, marker := range wafHeaderMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}

	sniff := r.Body
	if len(sniff) > wafBodySniffLen {
		sniff = sniff[:wafBodySniffLen]
	}
	sniff = strings.ToLower(sniff)
	for _, marker := range wafBodyMarkers {
		if strings.Contains(sniff, marker) {
			return true
		}
	}

	return false
}
