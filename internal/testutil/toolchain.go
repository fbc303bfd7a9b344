// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakeToolchain mimics `go build -o OUT SRC`: it writes "GOOS/GOARCH" into OUT.
// Set FAKE_FAIL_TARGET=os/arch to make that target fail with exit status 2,
// or FAKE_SLEEP=<seconds> to make every invocation hang for a while.
const fakeToolchain = `#!/bin/sh
shift
out=""
src=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift 2 ;;
    -*) shift ;;
    *) src="$1"; shift ;;
  esac
done
if [ -n "$FAKE_SLEEP" ]; then sleep "$FAKE_SLEEP"; fi
if [ "$GOOS/$GOARCH" = "$FAKE_FAIL_TARGET" ]; then
  echo "cannot build for $GOOS/$GOARCH" >&2
  exit 2
fi
if [ ! -f "$src" ]; then
  echo "no such file: $src" >&2
  exit 1
fi
echo "compiled $src"
printf '%s/%s\n' "$GOOS" "$GOARCH" > "$out"
`

// FakeToolchain writes the fake compiler into dir and returns the build
// command to put into a manifest (e.g. "/tmp/x/fakego build").
func FakeToolchain(t *testing.T, dir string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake toolchain needs /bin/sh")
	}

	path := filepath.Join(dir, "fakego")
	//nolint:gosec // G306: the fake compiler must be executable
	if err := os.WriteFile(path, []byte(fakeToolchain), 0700); err != nil {
		t.Fatalf("Failed to write fake toolchain: %v", err)
	}

	return path + " build"
}

// WriteFile creates a file with the given content, creating parent directories
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
