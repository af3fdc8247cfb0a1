package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Document structure elements

func Html(args ...any) *VNode  { return El("html", args...) }
func Head(args ...any) *VNode  { return El("head", args...) }
func Body(args ...any) *VNode  { return El("body", args...) }
func Title(args ...any) *VNode { return El("title", args...) }
func Meta(args ...any) *VNode  { return El("meta", args...) }
func Link(args ...any) *VNode  { return El("link", args...) }
func Base(args ...any) *VNode  { return El("base", args...) }

// Content sectioning elements

func Header(args ...any) *VNode  { return El("header", args...) }
func Footer(args ...any) *VNode  { return El("footer", args...) }
func Main(args ...any) *VNode    { return El("main", args...) }
func Nav(args ...any) *VNode     { return El("nav", args...) }
func Section(args ...any) *VNode { return El("section", args...) }
func Article(args ...any) *VNode { return El("article", args...) }
func Aside(args ...any) *VNode   { return El("aside", args...) }
func Address(args ...any) *VNode { return El("address", args...) }
func H1(args ...any) *VNode      { return El("h1", args...) }
func H2(args ...any) *VNode      { return El("h2", args...) }
func H3(args ...any) *VNode      { return El("h3", args...) }
func H4(args ...any) *VNode      { return El("h4", args...) }
func H5(args ...any) *VNode      { return El("h5", args...) }
func H6(args ...any) *VNode      { return El("h6", args...) }
func Hgroup(args ...any) *VNode  { return El("hgroup", args...) }

// Text content elements

func Div(args ...any) *VNode        { return El("div", args...) }
func P(args ...any) *VNode          { return El("p", args...) }
func Span(args ...any) *VNode       { return El("span", args...) }
func Pre(args ...any) *VNode        { return El("pre", args...) }
func Blockquote(args ...any) *VNode { return El("blockquote", args...) }
func Ul(args ...any) *VNode         { return El("ul", args...) }
func Ol(args ...any) *VNode         { return El("ol", args...) }
func Li(args ...any) *VNode         { return El("li", args...) }
func Dl(args ...any) *VNode         { return El("dl", args...) }
func Dt(args ...any) *VNode         { return El("dt", args...) }
func Dd(args ...any) *VNode         { return El("dd", args...) }
func Hr(args ...any) *VNode         { return El("hr", args...) }
func Figure(args ...any) *VNode     { return El("figure", args...) }
func Figcaption(args ...any) *VNode { return El("figcaption", args...) }

// Inline text semantics

func A(args ...any) *VNode      { return El("a", args...) }
func Strong(args ...any) *VNode { return El("strong", args...) }
func Em(args ...any) *VNode     { return El("em", args...) }
func B(args ...any) *VNode      { return El("b", args...) }
func I(args ...any) *VNode      { return El("i", args...) }
func U(args ...any) *VNode      { return El("u", args...) }
func S(args ...any) *VNode      { return El("s", args...) }
func Small(args ...any) *VNode  { return El("small", args...) }
func Mark(args ...any) *VNode   { return El("mark", args...) }
func Sub(args ...any) *VNode    { return El("sub", args...) }
func Sup(args ...any) *VNode    { return El("sup", args...) }
func Code(args ...any) *VNode   { return El("code", args...) }
func Kbd(args ...any) *VNode    { return El("kbd", args...) }
func Samp(args ...any) *VNode   { return El("samp", args...) }
func Var(args ...any) *VNode    { return El("var", args...) }
func Abbr(args ...any) *VNode   { return El("abbr", args...) }
func Time_(args ...any) *VNode  { return El("time", args...) }
func Cite(args ...any) *VNode   { return El("cite", args...) }
func Q(args ...any) *VNode      { return El("q", args...) }
func Dfn(args ...any) *VNode    { return El("dfn", args...) }
func Br(args ...any) *VNode     { return El("br", args...) }
func Wbr(args ...any) *VNode    { return El("wbr", args...) }

// Form elements

func Form(args ...any) *VNode     { return El("form", args...) }
func Input(args ...any) *VNode    { return El("input", args...) }
func Textarea(args ...any) *VNode { return El("textarea", args...) }
func Select(args ...any) *VNode   { return El("select", args...) }
func Option(args ...any) *VNode   { return El("option", args...) }
func Optgroup(args ...any) *VNode { return El("optgroup", args...) }
func Button(args ...any) *VNode   { return El("button", args...) }
func Label(args ...any) *VNode    { return El("label", args...) }
func Fieldset(args ...any) *VNode { return El("fieldset", args...) }
func Legend(args ...any) *VNode   { return El("legend", args...) }
func Datalist(args ...any) *VNode { return El("datalist", args...) }
func Output(args ...any) *VNode   { return El("output", args...) }
func Progress(args ...any) *VNode { return El("progress", args...) }
func Meter(args ...any) *VNode    { return El("meter", args...) }

// Table elements

func Table(args ...any) *VNode    { return El("table", args...) }
func Thead(args ...any) *VNode    { return El("thead", args...) }
func Tbody(args ...any) *VNode    { return El("tbody", args...) }
func Tfoot(args ...any) *VNode    { return El("tfoot", args...) }
func Tr(args ...any) *VNode       { return El("tr", args...) }
func Th(args ...any) *VNode       { return El("th", args...) }
func Td(args ...any) *VNode       { return El("td", args...) }
func Caption(args ...any) *VNode  { return El("caption", args...) }
func Colgroup(args ...any) *VNode { return El("colgroup", args...) }
func Col(args ...any) *VNode      { return El("col", args...) }

// Media elements

func Img(args ...any) *VNode     { return El("img", args...) }
func Picture(args ...any) *VNode { return El("picture", args...) }
func Source(args ...any) *VNode  { return El("source", args...) }
func Video(args ...any) *VNode   { return El("video", args...) }
func Audio(args ...any) *VNode   { return El("audio", args...) }
func Track(args ...any) *VNode   { return El("track", args...) }
func Iframe(args ...any) *VNode  { return El("iframe", args...) }
func Embed(args ...any) *VNode   { return El("embed", args...) }
func Object(args ...any) *VNode  { return El("object", args...) }
func Canvas(args ...any) *VNode  { return El("canvas", args...) }
func Svg(args ...any) *VNode     { return El("svg", args...) }

// Interactive elements

func Details(args ...any) *VNode { return El("details", args...) }
func Summary(args ...any) *VNode { return El("summary", args...) }
func Dialog(args ...any) *VNode  { return El("dialog", args...) }
func Menu(args ...any) *VNode    { return El("menu", args...) }

// Scripting elements

func Script(args ...any) *VNode   { return El("script", args...) }
func Noscript(args ...any) *VNode { return El("noscript", args...) }
func Template(args ...any) *VNode { return El("template", args...) }
func Slot(args ...any) *VNode     { return El("slot", args...) }
func Style(args ...any) *VNode    { return El("style", args...) }

// CustomElement creates an element with a custom tag name.
func CustomElement(tag string, args ...any) *VNode {
	return El(tag, args...)
}
