package gateways

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/ochairo/xrelease/internal/domain/entities"
	"github.com/ochairo/xrelease/internal/testutil"
)

func TestPackager_Pack(t *testing.T) {
	packager := NewPackager()
	outputDir := filepath.Join(t.TempDir(), "releases")

	stage := filepath.Join(outputDir, "tool-linux-amd64")
	testutil.WriteFile(t, filepath.Join(stage, "tool"), "binary")
	testutil.WriteFile(t, filepath.Join(stage, "README.rst"), "docs")

	archive := filepath.Join(outputDir, "tool-linux-amd64-1.0.0.tar.gz")
	if err := packager.Pack(context.Background(), stage, archive); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	names, err := packager.ListArchive(archive)
	if err != nil {
		t.Fatalf("ListArchive() error = %v", err)
	}

	want := []string{"tool-linux-amd64/", "tool-linux-amd64/README.rst", "tool-linux-amd64/tool"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("archive entries = %v, want %v", names, want)
	}

	if _, err := os.Stat(archive + ".tmp"); !os.IsNotExist(err) {
		t.Error("Pack() left the temporary archive behind")
	}
}

func TestPackager_Pack_Contents(t *testing.T) {
	packager := NewPackager()
	outputDir := t.TempDir()

	stage := filepath.Join(outputDir, "tool-darwin-amd64")
	testutil.WriteFile(t, filepath.Join(stage, "tool"), "darwin/amd64\n")

	archive := filepath.Join(outputDir, "tool-darwin-amd64-2.0.0.tar.gz")
	if err := packager.Pack(context.Background(), stage, archive); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	//nolint:gosec // G304: test archive
	f, err := os.Open(archive)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	//nolint:errcheck // Test cleanup
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	tr := tar.NewReader(gz)

	found := false
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar Next() error = %v", err)
		}
		if header.Name != "tool-darwin-amd64/tool" {
			continue
		}
		found = true
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if string(data) != "darwin/amd64\n" {
			t.Errorf("binary content = %q", data)
		}
	}
	if !found {
		t.Error("archive does not contain the binary")
	}
}

func TestPackager_Pack_Errors(t *testing.T) {
	packager := NewPackager()
	tmpDir := t.TempDir()

	t.Run("missing staging directory", func(t *testing.T) {
		archive := filepath.Join(tmpDir, "missing.tar.gz")
		err := packager.Pack(context.Background(), filepath.Join(tmpDir, "missing"), archive)
		if !errors.Is(err, entities.ErrPackage) {
			t.Errorf("Pack() error = %v, want ErrPackage", err)
		}
		if _, err := os.Stat(archive); !os.IsNotExist(err) {
			t.Error("Pack() created an archive for a missing stage")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		stage := filepath.Join(tmpDir, "tool-linux-arm")
		testutil.WriteFile(t, filepath.Join(stage, "tool"), "binary")
		archive := filepath.Join(tmpDir, "tool-linux-arm-1.0.0.tar.gz")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := packager.Pack(ctx, stage, archive); err == nil {
			t.Error("Pack() with cancelled context should fail")
		}
		if _, err := os.Stat(archive); !os.IsNotExist(err) {
			t.Error("Pack() left a partial archive")
		}
		if _, err := os.Stat(archive + ".tmp"); !os.IsNotExist(err) {
			t.Error("Pack() left the temporary archive behind")
		}
	})
}
