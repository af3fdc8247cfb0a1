package render

// voidElements are elements that cannot have children and have no closing tag.
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

// isVoidElement returns true if the tag is a void element.
func isVoidElement(tag string) bool {
	return voidElements[tag]
}

// booleanAttrs are attributes rendered as a bare name when true and
// dropped entirely when false.
var booleanAttrs = map[string]bool{
	"async":          true,
	"autofocus":      true,
	"autoplay":       true,
	"checked":        true,
	"controls":       true,
	"default":        true,
	"defer":          true,
	"disabled":       true,
	"hidden":         true,
	"loop":           true,
	"multiple":       true,
	"muted":          true,
	"novalidate":     true,
	"open":           true,
	"readonly":       true,
	"required":       true,
	"reversed":       true,
	"selected":       true,
}

// isBooleanAttr returns true if the attribute is a boolean attribute.
func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
