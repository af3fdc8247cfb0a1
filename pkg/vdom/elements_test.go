package vdom

import "testing"

func TestElementConstructors(t *testing.T) {
	t.Run("basic element", func(t *testing.T) {
		node := Div()
		if node.Kind != KindElement {
			t.Errorf("Kind = %v, want KindElement", node.Kind)
		}
		if node.Tag != "div" {
			t.Errorf("Tag = %v, want div", node.Tag)
		}
	})

	t.Run("with props", func(t *testing.T) {
		node := Div(Props{"class": "card", "id": "main"})
		if node.Props["class"] != "card" {
			t.Errorf("class = %v, want card", node.Props["class"])
		}
		if node.Props["id"] != "main" {
			t.Errorf("id = %v, want main", node.Props["id"])
		}
	})

	t.Run("with child node", func(t *testing.T) {
		node := Div(P(Text("Hello")))
		if len(node.Children) != 1 {
			t.Fatalf("Children len = %v, want 1", len(node.Children))
		}
		if node.Children[0].Tag != "p" {
			t.Errorf("Child tag = %v, want p", node.Children[0].Tag)
		}
	})

	t.Run("with string shorthand", func(t *testing.T) {
		node := Span("Hello")
		if len(node.Children) != 1 {
			t.Fatalf("Children len = %v, want 1", len(node.Children))
		}
		if node.Children[0].Kind != KindText {
			t.Errorf("Child kind = %v, want KindText", node.Children[0].Kind)
		}
		if node.Children[0].Text != "Hello" {
			t.Errorf("Child text = %v, want Hello", node.Children[0].Text)
		}
	})

	t.Run("tags match constructors", func(t *testing.T) {
		tests := []struct {
			node *VNode
			tag  string
		}{
			{Html(), "html"},
			{Head(), "head"},
			{Body(), "body"},
			{Section(), "section"},
			{H1(), "h1"},
			{Ul(), "ul"},
			{Li(), "li"},
			{A(), "a"},
			{Time_(), "time"},
			{Form(), "form"},
			{Input(), "input"},
			{Table(), "table"},
			{Td(), "td"},
			{Img(), "img"},
			{Script(), "script"},
			{Dialog(), "dialog"},
		}
		for _, tt := range tests {
			if tt.node.Tag != tt.tag {
				t.Errorf("Tag = %v, want %v", tt.node.Tag, tt.tag)
			}
		}
	})
}

func TestCustomElement(t *testing.T) {
	node := CustomElement("my-widget", Props{"variant": "compact"}, "hi")
	if node.Tag != "my-widget" {
		t.Errorf("Tag = %v, want my-widget", node.Tag)
	}
	if node.Props["variant"] != "compact" {
		t.Errorf("variant = %v, want compact", node.Props["variant"])
	}
	if len(node.Children) != 1 {
		t.Errorf("Children len = %v, want 1", len(node.Children))
	}
}

func TestIsVoidElement(t *testing.T) {
	voids := []string{"br", "img", "input", "link", "meta", "hr"}
	for _, tag := range voids {
		if !IsVoidElement(tag) {
			t.Errorf("IsVoidElement(%q) = false, want true", tag)
		}
	}

	nonVoids := []string{"div", "span", "p", "script", "textarea"}
	for _, tag := range nonVoids {
		if IsVoidElement(tag) {
			t.Errorf("IsVoidElement(%q) = true, want false", tag)
		}
	}
}
