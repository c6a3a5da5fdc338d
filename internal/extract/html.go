package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	crawlerrors "github.com/reconcrawl/surfacecrawl/internal/errors"
)

// HTML walks a fetched page. Every <script> without a src is scanned for
// URL literals, recorded in OSINT verbatim; every <a href> is resolved,
// cleaned, normalised and routed to OSINT or the html queue; every
// <script src> gets the same treatment but routed to the js queue.
//
// Parsing is lenient: an unparseable body yields an empty document and no
// findings.
func HTML(body string, ctx Context) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		if ctx.Logger != nil {
			cerr := crawlerrors.Wrap(crawlerrors.ErrParseFailure, err)
			ctx.Logger.Debug().Err(cerr).Msg("treating unparseable HTML body as empty")
		}
		return
	}

	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if src, has := sel.Attr("src"); has {
			ctx.routeScriptSrc(src)
			return
		}
		for _, literal := range ScanURLLiterals(sel.Text()) {
			ctx.Findings.AddOSINT(literal)
		}
	})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, has := sel.Attr("href")
		if !has {
			return
		}
		ctx.routeAnchor(href)
	})
}
