package inline

// Replacement is a literal substring rewrite applied to document markup.
type Replacement struct {
	Old string
	New string
}

// DefaultReplacements mark generated .js script tags and stylesheet links for
// inlining. The self-closing form matches links serialized by the HTML renderer.
var DefaultReplacements = []Replacement{
	{Old: `.js"></script>`, New: `.js" inline></script>`},
	{Old: `rel="stylesheet">`, New: `rel="stylesheet" inline>`},
	{Old: `rel="stylesheet"/>`, New: `rel="stylesheet" inline/>`},
}

// DefaultIgnore lists asset extensions that are never inlined.
var DefaultIgnore = []string{"png", "jpg", "jpeg", "gif", "svg", "ico", "webp", "avif", "bmp"}

type Config struct {
	// Directory holding the built HTML documents
	Dir string
	// Non-recursive glob matched inside Dir
	Pattern string
	// Directory that root-relative references ("/static/...") resolve against, defaults to Dir
	Root string
	// Extensions (without the dot) that are never inlined
	Ignore []string
	// Minify inlined scripts and stylesheets
	Compress bool
	// Marker rewrites, defaults to DefaultReplacements
	Replacements []Replacement
}

// DefaultConfig returns the configuration for a create-react-app style build directory
func DefaultConfig() Config {
	return Config{
		Dir:          "build",
		Pattern:      "*.html",
		Ignore:       DefaultIgnore,
		Replacements: DefaultReplacements,
	}
}
