// Package richtext renders project bodies to sanitized HTML. It handles both
// body encodings: structured Portable Text documents from the CMS and the
// markdown text of static content blocks.
package richtext

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// ErrMalformedDocument is returned when a structured document cannot be decoded.
var ErrMalformedDocument = errors.New("malformed structured document")

// ResolveImage turns an opaque asset reference into a displayable URL.
type ResolveImage func(ctx context.Context, ref string) (string, error)

// Renderer converts body content to sanitized HTML. Safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New creates a Renderer with GitHub-flavoured markdown and a UGC sanitizer.
func New() *Renderer {
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// Markdown renders a markdown body.
func (r *Renderer) Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return r.sanitize(buf.String()), nil
}

func (r *Renderer) sanitize(s string) template.HTML {
	return template.HTML(strings.TrimSpace(r.policy.Sanitize(s)))
}

// Portable Text node shapes.
type ptNode struct {
	Type     string           `json:"_type"`
	Key      string           `json:"_key"`
	Style    string           `json:"style"`
	ListItem string           `json:"listItem"`
	Children []ptSpan         `json:"children"`
	MarkDefs []ptMarkDef      `json:"markDefs"`
	Asset    *types.AssetRef  `json:"asset"`
	Alt      string           `json:"alt"`
	Caption  string           `json:"caption"`
	Images   []types.CMSImage `json:"images"`
}

type ptSpan struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

type ptMarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href"`
}

var blockTags = map[string]string{
	"":           "p",
	"normal":     "p",
	"h1":         "h1",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"h5":         "h5",
	"h6":         "h6",
	"blockquote": "blockquote",
}

var decoratorTags = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

// PortableText renders a Portable Text document into view blocks. Runs of
// text blocks collapse into a single rich block; image and gallery nodes
// become image and gallery blocks with URLs from resolve. Unknown node types
// are skipped. Nested list levels are flattened.
func (r *Renderer) PortableText(ctx context.Context, raw json.RawMessage, resolve ResolveImage) ([]types.Block, error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return []types.Block{}, nil
	}

	var nodes []ptNode
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	blocks := []types.Block{}
	var text strings.Builder
	openList := ""

	closeList := func() {
		if openList != "" {
			text.WriteString("</" + openList + ">")
			openList = ""
		}
	}
	flushText := func() {
		closeList()
		if text.Len() > 0 {
			blocks = append(blocks, types.Block{Kind: types.KindRich, HTML: r.sanitize(text.String())})
			text.Reset()
		}
	}

	for _, n := range nodes {
		switch n.Type {
		case "block":
			if n.ListItem != "" {
				tag := "ul"
				if n.ListItem == "number" {
					tag = "ol"
				}
				if openList != tag {
					closeList()
					text.WriteString("<" + tag + ">")
					openList = tag
				}
				text.WriteString("<li>" + renderSpans(n) + "</li>")
				continue
			}
			closeList()
			tag, ok := blockTags[n.Style]
			if !ok {
				tag = "p"
			}
			text.WriteString("<" + tag + ">" + renderSpans(n) + "</" + tag + ">")

		case "image":
			flushText()
			img, err := resolveImage(ctx, resolve, n.Asset, n.Alt)
			if err != nil {
				return nil, err
			}
			if img != nil {
				blocks = append(blocks, types.Block{Kind: types.KindImage, Image: img, Caption: n.Caption})
			}

		case "gallery":
			flushText()
			var images []types.Image
			for _, gi := range n.Images {
				img, err := resolveImage(ctx, resolve, gi.Asset, gi.Alt)
				if err != nil {
					return nil, err
				}
				if img != nil {
					images = append(images, *img)
				}
			}
			if len(images) > 0 {
				blocks = append(blocks, types.Block{Kind: types.KindGallery, Images: images, Caption: n.Caption})
			}
		}
	}
	flushText()

	return blocks, nil
}

func resolveImage(ctx context.Context, resolve ResolveImage, asset *types.AssetRef, alt string) (*types.Image, error) {
	if asset == nil || asset.Ref == "" {
		return nil, nil
	}
	if resolve == nil {
		return nil, fmt.Errorf("resolve image %q: no image resolver", asset.Ref)
	}
	url, err := resolve(ctx, asset.Ref)
	if err != nil {
		return nil, fmt.Errorf("resolve image %q: %w", asset.Ref, err)
	}
	return &types.Image{URL: url, Alt: alt}, nil
}

func renderSpans(n ptNode) string {
	links := make(map[string]string, len(n.MarkDefs))
	for _, d := range n.MarkDefs {
		if d.Type == "link" && d.Href != "" {
			links[d.Key] = d.Href
		}
	}

	var b strings.Builder
	for _, s := range n.Children {
		if s.Type != "" && s.Type != "span" {
			continue
		}
		var open, close []string
		for _, m := range s.Marks {
			if tag, ok := decoratorTags[m]; ok {
				open = append(open, "<"+tag+">")
				close = append([]string{"</" + tag + ">"}, close...)
				continue
			}
			if href, ok := links[m]; ok {
				open = append(open, `<a href="`+html.EscapeString(href)+`">`)
				close = append([]string{"</a>"}, close...)
			}
		}
		text := strings.ReplaceAll(html.EscapeString(s.Text), "\n", "<br>")
		b.WriteString(strings.Join(open, "") + text + strings.Join(close, ""))
	}
	return b.String()
}
