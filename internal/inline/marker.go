package inline

import (
	"bytes"

	"golang.org/x/net/html"
)

// MarkInline applies the literal replacements to runs of adjacent markup
// tokens. Text, script bodies and comments are copied verbatim, so already
// inlined content is never rewritten.
func MarkInline(doc []byte, replacements []Replacement) []byte {
	var (
		out         bytes.Buffer
		z           = html.NewTokenizer(bytes.NewReader(doc))
		offset      int
		markupStart int
	)

	flush := func(end int) {
		run := doc[markupStart:end]
		for _, r := range replacements {
			run = bytes.ReplaceAll(run, []byte(r.Old), []byte(r.New))
		}
		out.Write(run)
	}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF; a bytes.Reader has no other read error
			break
		}

		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.TextToken, html.CommentToken:
			flush(start)
			out.Write(doc[start:offset])
			markupStart = offset
		}
	}

	flush(offset)
	out.Write(doc[offset:])

	return out.Bytes()
}
