package inline

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sentinel errors
var (
	// ErrAssetNotFound is returned when a tag marked for inlining references a missing file.
	ErrAssetNotFound = errors.New("inline asset not found")

	// ErrUnterminatedScript is returned when a marked script has no closing tag.
	ErrUnterminatedScript = errors.New("unterminated script element")

	// ErrMinifyFailed is returned when esbuild cannot minify an inlined asset.
	ErrMinifyFailed = errors.New("failed to minify inline asset")
)

const inlineAttr = "inline"

var (
	closingScript = regexp.MustCompile(`(?i)</(script)`)
	closingStyle  = regexp.MustCompile(`(?i)</(style)`)
)

// attributes that only make sense on an external reference
var droppedAttrs = map[string]bool{
	inlineAttr:    true,
	"src":         true,
	"href":        true,
	"rel":         true,
	"defer":       true,
	"async":       true,
	"integrity":   true,
	"crossorigin": true,
}

// Inliner replaces marked script and link tags with the contents of the files they reference.
type Inliner struct {
	root     string
	ignore   map[string]bool
	compress bool
}

// InlineResult lists the references handled in one document.
type InlineResult struct {
	Inlined []string
	Skipped []string
}

// NewInliner creates an inliner. Root-relative references resolve against
// root, or against the document's directory when root is empty.
func NewInliner(root string, ignore []string, compress bool) *Inliner {
	in := &Inliner{
		root:     root,
		ignore:   make(map[string]bool, len(ignore)),
		compress: compress,
	}
	for _, ext := range ignore {
		in.ignore[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return in
}

// Inline rewrites every <script inline> and <link inline> tag in doc, which
// was read from docPath.
func (in *Inliner) Inline(doc []byte, docPath string) ([]byte, *InlineResult, error) {
	var (
		out    bytes.Buffer
		result = &InlineResult{}
		z      = nethtml.NewTokenizer(bytes.NewReader(doc))
		offset int
		last   int
	)

	for {
		tt := z.Next()
		if tt == nethtml.ErrorToken {
			break
		}

		start := offset
		offset += len(z.Raw())

		if tt != nethtml.StartTagToken && tt != nethtml.SelfClosingTagToken {
			continue
		}

		tok := z.Token()
		if tok.DataAtom != atom.Script && tok.DataAtom != atom.Link {
			continue
		}
		if !hasAttr(tok.Attr, inlineAttr) {
			continue
		}

		tagEnd := offset

		// the tokenizer reads script content as raw text even after "<script/>"
		if tok.DataAtom == atom.Script {
			end, err := skipScriptBody(z, offset)
			if err != nil {
				return nil, nil, err
			}
			offset = end
		}

		ref := attrValue(tok.Attr, cond(tok.DataAtom == atom.Script, "src", "href"))
		if reason := in.skipReason(ref); reason != "" {
			log.Debug().Str("document", docPath).Str("ref", ref).Str("reason", reason).Msg("Skipping inline reference")
			result.Skipped = append(result.Skipped, ref)

			// keep the element but drop the marker so a later run leaves it alone
			out.Write(doc[last:start])
			out.Write(unmarkedTag(tok, tt == nethtml.SelfClosingTagToken))
			last = tagEnd
			continue
		}

		replacement, err := in.render(tok, ref, docPath)
		if err != nil {
			return nil, nil, err
		}

		out.Write(doc[last:start])
		out.Write(replacement)
		last = offset
		result.Inlined = append(result.Inlined, ref)
	}

	out.Write(doc[last:])
	return out.Bytes(), result, nil
}

// skipScriptBody advances the tokenizer past the closing </script> tag and
// returns the offset just after it.
func skipScriptBody(z *nethtml.Tokenizer, offset int) (int, error) {
	for {
		tt := z.Next()
		if tt == nethtml.ErrorToken {
			return 0, ErrUnterminatedScript
		}
		offset += len(z.Raw())
		if tt == nethtml.EndTagToken {
			if name, _ := z.TagName(); string(name) == "script" {
				return offset, nil
			}
		}
	}
}

func (in *Inliner) skipReason(ref string) string {
	switch {
	case ref == "":
		return "no reference"
	case isRemote(ref):
		return "remote reference"
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(stripQuery(ref))), ".")
	if in.ignore[ext] {
		return "ignored extension"
	}
	return ""
}

func (in *Inliner) render(tok nethtml.Token, ref, docPath string) ([]byte, error) {
	assetPath := in.resolve(ref, docPath)

	data, err := os.ReadFile(assetPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, assetPath)
		}
		return nil, fmt.Errorf("failed to read asset %s: %w", assetPath, err)
	}

	isScript := tok.DataAtom == atom.Script
	if in.compress {
		data, err = minify(data, cond(isScript, api.LoaderJS, api.LoaderCSS))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", assetPath, err)
		}
	}

	tag := cond(isScript, "script", "style")
	escape := cond(isScript, closingScript, closingStyle)

	var buf bytes.Buffer
	writeStartTag(&buf, tag, tok.Attr, droppedAttrs, false)
	buf.Write(escape.ReplaceAll(data, []byte(`<\/$1`)))
	buf.WriteString("</" + tag + ">")

	log.Debug().Str("document", docPath).Str("asset", assetPath).Int("bytes", len(data)).Msg("Inlined asset")

	return buf.Bytes(), nil
}

// unmarkedTag re-renders a start tag without the inline marker.
func unmarkedTag(tok nethtml.Token, selfClosing bool) []byte {
	var buf bytes.Buffer
	writeStartTag(&buf, tok.Data, tok.Attr, map[string]bool{inlineAttr: true}, selfClosing)
	return buf.Bytes()
}

func writeStartTag(buf *bytes.Buffer, tag string, attrs []nethtml.Attribute, drop map[string]bool, selfClosing bool) {
	buf.WriteString("<" + tag)
	for _, a := range attrs {
		if drop[a.Key] {
			continue
		}
		buf.WriteString(" " + a.Key)
		if a.Val != "" {
			buf.WriteString(`="` + html.EscapeString(a.Val) + `"`)
		}
	}
	buf.WriteString(cond(selfClosing, "/>", ">"))
}

func (in *Inliner) resolve(ref, docPath string) string {
	ref = stripQuery(ref)
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}

	if strings.HasPrefix(ref, "/") && in.root != "" {
		return filepath.Join(in.root, filepath.FromSlash(ref))
	}
	return filepath.Join(filepath.Dir(docPath), filepath.FromSlash(ref))
}

func minify(data []byte, loader api.Loader) ([]byte, error) {
	result := api.Transform(string(data), api.TransformOptions{
		Loader:            loader,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMinifyFailed, result.Errors[0].Text)
	}
	return result.Code, nil
}

func stripQuery(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}

func isRemote(ref string) bool {
	for _, prefix := range []string{"http://", "https://", "//", "data:"} {
		if strings.HasPrefix(strings.ToLower(ref), prefix) {
			return true
		}
	}
	return false
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
