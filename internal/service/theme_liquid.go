package service

import (
	"regexp"
	"strings"
)

// Theme asset keys touched by the patcher.
const (
	ProductThumbnailKey = "snippets/product-thumbnail.liquid"
	CardProductKey      = "snippets/card-product.liquid"
	LayoutKey           = "layout/theme.liquid"
	StylesheetAssetKey  = "assets/component-custom-iframe.css"

	StylesheetTag = `{{ 'component-custom-iframe.css' | asset_url | stylesheet_tag }}`

	// patchMarker is present in every patched snippet.
	patchMarker = "iframe_url"
)

// snippetPatch describes how one snippet gets its iframe branch.
type snippetPatch struct {
	Key    string
	Anchor *regexp.Regexp
	Iframe string
}

var (
	headTag         = regexp.MustCompile(`(?i)<head[^>]*>`)
	blankLines      = regexp.MustCompile(`(?m)^\s*\n`)
	productMediaDiv = regexp.MustCompile(`(?s)<div[^>]*class="product-media-container[^>]*>.*?</div>`)
	cardMediaDiv    = regexp.MustCompile(`(?s)<div[^>]*class="card__media[^>]*>.*?</div>`)
)

const productThumbnailIframe = `
{%- if product.metafields.custom.iframe_url != blank -%}
  <div class="product-media-container">
    <iframe
      src="{{ product.metafields.custom.iframe_url }}"
      width="100%"
      height="400px"
      frameborder="0"
      allowfullscreen
      style="width: 100%; height: 400px; border: none; margin-bottom: 20px;"
    ></iframe>
  </div>
{%- else -%}`

const cardProductIframe = `
{%- if card_product.metafields.custom.iframe_url != blank -%}
  <div class="card__media">
    <div class="media media--transparent media--hover-effect">
      <iframe
        src="{{ card_product.metafields.custom.iframe_url }}"
        width="100%"
        height="100%"
        frameborder="0"
        allowfullscreen
        style="position: absolute; top: 0; left: 0; width: 100%; height: 100%;"
      ></iframe>
    </div>
  </div>
{%- else -%}`

// injectOrder is the order snippets are patched in.
var injectOrder = []snippetPatch{
	{Key: ProductThumbnailKey, Anchor: productMediaDiv, Iframe: productThumbnailIframe},
	{Key: CardProductKey, Anchor: cardMediaDiv, Iframe: cardProductIframe},
}

// restoreOrder is the order snippets are restored in on revert.
var restoreOrder = []string{CardProductKey, ProductThumbnailKey}

// wrapFirstMatch puts the iframe branch around the first anchor match, keeping the
// matched markup verbatim inside the else branch. ok is false when the anchor is absent.
func wrapFirstMatch(content string, p snippetPatch) (string, bool) {
	loc := p.Anchor.FindStringIndex(content)
	if loc == nil {
		return content, false
	}
	var b strings.Builder
	b.Grow(len(content) + len(p.Iframe) + 32)
	b.WriteString(content[:loc[0]])
	b.WriteString(p.Iframe)
	b.WriteString("\n")
	b.WriteString(content[loc[0]:loc[1]])
	b.WriteString("\n{%- endif -%}")
	b.WriteString(content[loc[1]:])
	return b.String(), true
}

// addStylesheetTag inserts the stylesheet tag after the first <head> tag.
// changed is false when the tag is already there or there is no <head>.
func addStylesheetTag(layout string) (string, bool) {
	if strings.Contains(layout, StylesheetTag) {
		return layout, false
	}
	loc := headTag.FindStringIndex(layout)
	if loc == nil {
		return layout, false
	}
	return layout[:loc[1]] + "\n  " + StylesheetTag + layout[loc[1]:], true
}

// removeStylesheetTag drops the stylesheet tag and then every blank line.
// changed is false when the tag was not present.
func removeStylesheetTag(layout string) (string, bool) {
	if !strings.Contains(layout, StylesheetTag) {
		return layout, false
	}
	out := strings.Replace(layout, StylesheetTag, "", 1)
	return blankLines.ReplaceAllString(out, ""), true
}
