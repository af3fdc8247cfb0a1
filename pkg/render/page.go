package render

import (
	"fmt"
	"html"
	"io"

	"github.com/JorgeRod2594/feature-hub/pkg/document"
	"github.com/JorgeRod2594/feature-hub/pkg/vdom"
)

// Page describes a complete HTML document.
type Page struct {
	// Title sets the document title.
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	// Meta contains additional meta tags.
	Meta []MetaTag

	// Links contains link tags (favicon, preconnect, etc.) rendered
	// before the registered stylesheets.
	Links []LinkTag

	// Styles supplies the stylesheet links for the head, emitted in
	// registry insertion order.
	Styles *document.StyleRegistry

	// Body is the document body content.
	Body *vdom.VNode

	// Scripts are rendered at the end of the body.
	Scripts []ScriptTag
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name     string // name attribute
	Content  string // content attribute
	Property string // property attribute (for OpenGraph)
}

// LinkTag represents a link element in the document head.
type LinkTag struct {
	Rel   string // rel attribute
	Href  string // href attribute
	Type  string // type attribute
	Media string // media attribute
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string // external script source
	Inline string // inline script body, used when Src is empty
	Defer  bool
}

// RenderPage renders a complete HTML document to w.
func (r *Renderer) RenderPage(w io.Writer, page Page) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<html lang="%s">`+"\n", escapeAttr(lang)); err != nil {
		return err
	}

	if err := r.renderHead(w, page); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "<body>\n"); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	for _, script := range page.Scripts {
		if err := renderScriptTag(w, script); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</body>\n</html>\n"); err != nil {
		return err
	}

	return nil
}

// renderHead renders the document head section.
func (r *Renderer) renderHead(w io.Writer, page Page) error {
	if _, err := io.WriteString(w, "<head>\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `  <meta charset="utf-8">`+"\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `  <meta name="viewport" content="width=device-width, initial-scale=1">`+"\n"); err != nil {
		return err
	}

	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", html.EscapeString(page.Title)); err != nil {
			return err
		}
	}

	for _, meta := range page.Meta {
		if err := renderMetaTag(w, meta); err != nil {
			return err
		}
	}
	for _, link := range page.Links {
		if err := renderLinkTag(w, link); err != nil {
			return err
		}
	}

	// Registered stylesheets, in insertion order.
	if page.Styles != nil {
		for _, sheet := range page.Styles.Stylesheets() {
			if err := renderStylesheet(w, sheet); err != nil {
				return err
			}
		}
	}

	if _, err := io.WriteString(w, "</head>\n"); err != nil {
		return err
	}
	return nil
}

func renderStylesheet(w io.Writer, sheet document.Stylesheet) error {
	if sheet.Media != "" {
		_, err := fmt.Fprintf(w, `  <link rel="stylesheet" href="%s" media="%s">`+"\n",
			escapeAttr(sheet.Href), escapeAttr(sheet.Media))
		return err
	}
	_, err := fmt.Fprintf(w, `  <link rel="stylesheet" href="%s">`+"\n", escapeAttr(sheet.Href))
	return err
}

// renderMetaTag renders a meta element.
func renderMetaTag(w io.Writer, meta MetaTag) error {
	if _, err := io.WriteString(w, "  <meta"); err != nil {
		return err
	}
	if meta.Name != "" {
		if _, err := fmt.Fprintf(w, ` name="%s"`, escapeAttr(meta.Name)); err != nil {
			return err
		}
	}
	if meta.Property != "" {
		if _, err := fmt.Fprintf(w, ` property="%s"`, escapeAttr(meta.Property)); err != nil {
			return err
		}
	}
	if meta.Content != "" {
		if _, err := fmt.Fprintf(w, ` content="%s"`, escapeAttr(meta.Content)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">\n")
	return err
}

// renderLinkTag renders a link element.
func renderLinkTag(w io.Writer, link LinkTag) error {
	if _, err := io.WriteString(w, "  <link"); err != nil {
		return err
	}
	if link.Rel != "" {
		if _, err := fmt.Fprintf(w, ` rel="%s"`, escapeAttr(link.Rel)); err != nil {
			return err
		}
	}
	if link.Href != "" {
		if _, err := fmt.Fprintf(w, ` href="%s"`, escapeAttr(link.Href)); err != nil {
			return err
		}
	}
	if link.Type != "" {
		if _, err := fmt.Fprintf(w, ` type="%s"`, escapeAttr(link.Type)); err != nil {
			return err
		}
	}
	if link.Media != "" {
		if _, err := fmt.Fprintf(w, ` media="%s"`, escapeAttr(link.Media)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">\n")
	return err
}

func renderScriptTag(w io.Writer, script ScriptTag) error {
	if script.Src != "" {
		if script.Defer {
			_, err := fmt.Fprintf(w, `<script src="%s" defer></script>`+"\n", escapeAttr(script.Src))
			return err
		}
		_, err := fmt.Fprintf(w, `<script src="%s"></script>`+"\n", escapeAttr(script.Src))
		return err
	}
	if script.Inline == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "<script>%s</script>\n", script.Inline)
	return err
}
