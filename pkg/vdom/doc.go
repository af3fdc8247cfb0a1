// Package vdom provides the server-side UI tree for feature hub hosts.
//
// The tree is an in-memory representation of the page: the host builds
// it from components and feature apps, and the render package turns it
// into HTML.
//
// # Core Types
//
// VNode is the fundamental building block representing elements, text,
// fragments, components, and raw HTML. Props holds attributes.
// Component is anything with a Render method; feature apps plug into
// the tree as components.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Props{"class": "card", "id": "main"},
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	)
//
// El creates elements with arbitrary tags, and Fragment groups children
// without a wrapper. Strings passed as children become text nodes.
package vdom
