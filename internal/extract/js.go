package extract

import (
	"regexp"

	"github.com/reconcrawl/surfacecrawl/internal/urlcanon"
)

// quotedURLPattern matches a quoted string that is either an absolute
// http(s) URL or an absolute path.
var quotedURLPattern = regexp.MustCompile(`["'](https?://[^"']+|/[^"']*)["']`)

// fetchCallPattern matches fetch("...") or fetch('...'), first string
// argument.
var fetchCallPattern = regexp.MustCompile(`fetch\(\s*["']([^"']+)["']`)

// xhrOpenPattern matches .open("METHOD", "...") where METHOD is one or more
// uppercase letters, second string argument.
var xhrOpenPattern = regexp.MustCompile(`\.open\(\s*["']([A-Z]+)["']\s*,\s*["']([^"']+)["']`)

// JS scans a script body. Every URL literal is cleaned and added to OSINT
// unconditionally, then three patterns pull candidate request targets, each
// resolved against the script's own URL, cleaned, and routed. Unlike the
// HTML extractor's inline-script scan, which records matches verbatim, the
// literal scan here cleans each match first.
func JS(body string, ctx Context) {
	for _, literal := range ScanURLLiterals(body) {
		ctx.Findings.AddOSINT(urlcanon.Clean(literal))
	}

	for _, match := range quotedURLPattern.FindAllStringSubmatch(body, -1) {
		ctx.routeScriptLiteral(match[1])
	}

	for _, match := range fetchCallPattern.FindAllStringSubmatch(body, -1) {
		ctx.routeScriptLiteral(match[1])
	}

	for _, match := range xhrOpenPattern.FindAllStringSubmatch(body, -1) {
		ctx.routeScriptLiteral(match[2])
	}
}
