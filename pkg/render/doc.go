// Package render provides server-side rendering of VNode trees.
//
// The render package converts VNode trees into HTML strings or streams,
// handling element rendering, text and attribute escaping, void and
// boolean attributes, and full page rendering with DOCTYPE, head, and
// body. Registered stylesheets from a document.StyleRegistry are emitted
// into the page head in insertion order.
//
// To render a VNode tree to a string:
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// To render a complete HTML document:
//
//	err := renderer.RenderPage(w, render.Page{
//	    Title:  "Dashboard",
//	    Styles: registry,
//	    Body:   bodyNode,
//	})
//
// All text content is escaped by default. Raw HTML can be inserted using
// KindRaw nodes, but should only be used with trusted content.
package render
