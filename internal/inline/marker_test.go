package inline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkInline(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "script tag",
			input:    `<script defer="defer" src="/static/js/main.js"></script>`,
			expected: `<script defer="defer" src="/static/js/main.js" inline></script>`,
		},
		{
			name:     "stylesheet link",
			input:    `<link href="/static/css/main.css" rel="stylesheet">`,
			expected: `<link href="/static/css/main.css" rel="stylesheet" inline>`,
		},
		{
			name:     "rendered stylesheet link",
			input:    `<link href="/static/css/main.css" rel="stylesheet"/>`,
			expected: `<link href="/static/css/main.css" rel="stylesheet" inline/>`,
		},
		{
			name:     "attribute order that does not match is left alone",
			input:    `<link rel="stylesheet" href="/static/css/main.css">`,
			expected: `<link rel="stylesheet" href="/static/css/main.css">`,
		},
		{
			name:     "non js script is left alone",
			input:    `<script src="/static/js/main.mjs"></script>`,
			expected: `<script src="/static/js/main.mjs"></script>`,
		},
		{
			name:     "script body is not rewritten",
			input:    `<script>var link = '<link href="x.css" rel="stylesheet">';</script>`,
			expected: `<script>var link = '<link href="x.css" rel="stylesheet">';</script>`,
		},
		{
			name:     "comment is not rewritten",
			input:    `<!-- <script src="old.js"></script> -->`,
			expected: `<!-- <script src="old.js"></script> -->`,
		},
		{
			name:     "text around tags is preserved",
			input:    "<head>\n  <title>App</title>\n  <script src=\"a.js\"></script>\n</head>",
			expected: "<head>\n  <title>App</title>\n  <script src=\"a.js\" inline></script>\n</head>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := MarkInline([]byte(tt.input), DefaultReplacements)
			require.Equal(t, tt.expected, string(out))
		})
	}
}

func TestMarkInline_idempotent(t *testing.T) {
	doc := []byte(`<link href="/a.css" rel="stylesheet"><script src="/a.js"></script>`)

	once := MarkInline(doc, DefaultReplacements)
	twice := MarkInline(once, DefaultReplacements)
	require.Equal(t, string(once), string(twice))
}
