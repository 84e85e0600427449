package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "strips non-content nodes",
			html: `<html><head><title>Ignored</title><meta name="x" content="y"><link rel="stylesheet" href="a.css"></head>
<body>
  <h1>Tarte   aux pommes</h1>
  <script>document.write("injected")</script>
  <style>h1 { color: red }</style>
  <noscript>enable js</noscript>
  <iframe src="https://ads.example"></iframe>
  <svg><text>logo</text></svg>
  <p>200 g
     farine</p>
</body></html>`,
			want: "Tarte aux pommes 200 g farine",
		},
		{
			name: "fragment without body element",
			html: "<p>Juste   du\ntexte</p>",
			want: "Juste du texte",
		},
		{
			name: "malformed markup",
			html: "<div><p>Sucre<span> 100 g</div></p>",
			want: "Sucre 100 g",
		},
		{
			name: "empty document",
			html: "",
			want: "",
		},
		{
			name: "only noise",
			html: "<script>alert(1)</script><style>p{}</style>",
			want: "",
		},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.html))
		})
	}
}
