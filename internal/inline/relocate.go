package inline

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RelocateDeferredScripts moves every <script defer> element to the end of
// <body>, keeping attributes and relative order. It returns the number of
// scripts moved; when none are found the input is returned untouched.
func RelocateDeferredScripts(doc []byte) ([]byte, int, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse html: %w", err)
	}

	var (
		body    *html.Node
		scripts []*html.Node
	)
	for n := range root.Descendants() {
		if n.Type != html.ElementNode {
			continue
		}
		switch {
		case n.DataAtom == atom.Body && body == nil:
			body = n
		case n.DataAtom == atom.Script && hasAttr(n.Attr, "defer"):
			scripts = append(scripts, n)
		}
	}

	if len(scripts) == 0 || body == nil || alreadyTrailing(body, scripts) {
		return doc, 0, nil
	}

	for _, script := range scripts {
		script.Parent.RemoveChild(script)
		body.AppendChild(script)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, 0, fmt.Errorf("failed to render html: %w", err)
	}

	return buf.Bytes(), len(scripts), nil
}

// alreadyTrailing reports whether every script is among the script elements
// that close the body, ignoring whitespace between them.
func alreadyTrailing(body *html.Node, scripts []*html.Node) bool {
	trailing := map[*html.Node]bool{}
	for n := body.LastChild; n != nil; n = n.PrevSibling {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
			continue
		}
		if n.Type != html.ElementNode || n.DataAtom != atom.Script {
			break
		}
		trailing[n] = true
	}

	for _, script := range scripts {
		if !trailing[script] {
			return false
		}
	}
	return true
}

func hasAttr(attrs []html.Attribute, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

func attrValue(attrs []html.Attribute, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
