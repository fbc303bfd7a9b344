package yaml

import (
	"testing"
)

// FuzzManifestParser tests the YAML parser against random/malformed inputs
// to detect crashes, panics, or unexpected behavior.
//
// Run with: go test -fuzz=FuzzManifestParser -fuzztime=30s
func FuzzManifestParser(f *testing.F) {
	f.Add([]byte(`name: tool
targets:
  linux: [386, amd64, arm]
  darwin: [amd64, 386]
`))

	f.Add([]byte(`name: tool
source: ./cmd/tool
docs: [README.md, LICENSE]
build:
  command: go build -trimpath
  env: {CGO_ENABLED: "0"}
targets: [linux/amd64, windows/amd64]
`))

	f.Add([]byte(``))
	f.Add([]byte(`{}`))
	f.Add([]byte(`[]`))
	f.Add([]byte(`targets: {linux: {}}`))
	f.Add([]byte(`targets: [/]`))
	f.Add([]byte(`name: test\nname: duplicate`))

	parser := NewManifestParser()

	f.Fuzz(func(_ *testing.T, data []byte) {
		_, _ = parser.Parse(data)
	})
}
