package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/ochairo/xrelease/internal/domain/entities"
)

func testManifest() *entities.Manifest {
	return &entities.Manifest{
		Name: "tool",
		Targets: []entities.Target{
			{OS: "linux", Arch: "amd64"},
			{OS: "darwin", Arch: "amd64"},
		},
	}
}

func TestValidateRelease(t *testing.T) {
	tests := []struct {
		name             string
		archivePaths     []string
		stagingDirs      []string
		expectedStatus   ReleaseStatus
		expectedReady    bool
		expectedMissing  int
		expectedAvailble int
	}{
		{
			name: "all targets present - ready",
			archivePaths: []string{
				"releases/tool-linux-amd64-1.0.0.tar.gz",
				"releases/tool-darwin-amd64-1.0.0.tar.gz",
			},
			expectedStatus:   StatusReady,
			expectedReady:    true,
			expectedAvailble: 2,
		},
		{
			name:            "no archives",
			archivePaths:    nil,
			expectedStatus:  StatusNoArtifacts,
			expectedMissing: 2,
		},
		{
			name: "missing target",
			archivePaths: []string{
				"releases/tool-linux-amd64-1.0.0.tar.gz",
			},
			expectedStatus:   StatusMissingTargets,
			expectedMissing:  1,
			expectedAvailble: 1,
		},
		{
			name: "unexpected target",
			archivePaths: []string{
				"releases/tool-linux-amd64-1.0.0.tar.gz",
				"releases/tool-darwin-amd64-1.0.0.tar.gz",
				"releases/tool-linux-arm-1.0.0.tar.gz",
			},
			expectedStatus:   StatusUnexpectedTargets,
			expectedAvailble: 2,
		},
		{
			name: "other versions and tools ignored",
			archivePaths: []string{
				"releases/tool-linux-amd64-1.0.0.tar.gz",
				"releases/tool-darwin-amd64-1.0.0.tar.gz",
				"releases/tool-linux-amd64-0.9.0.tar.gz",
				"releases/other-linux-amd64-1.0.0.tar.gz",
				"releases/tool-linux-amd64-1.0.0.tar.gz.sha256",
			},
			expectedStatus:   StatusReady,
			expectedReady:    true,
			expectedAvailble: 2,
		},
		{
			name: "leftover staging directory",
			archivePaths: []string{
				"releases/tool-linux-amd64-1.0.0.tar.gz",
				"releases/tool-darwin-amd64-1.0.0.tar.gz",
			},
			stagingDirs:      []string{"releases/tool-linux-arm"},
			expectedStatus:   StatusLeftoverStagingDirs,
			expectedAvailble: 2,
		},
	}

	service := NewReleaseService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validation := service.ValidateRelease(testManifest(), "1.0.0", tt.archivePaths, tt.stagingDirs)

			if validation.Status != tt.expectedStatus {
				t.Errorf("Status = %v, want %v", validation.Status, tt.expectedStatus)
			}
			if validation.IsReady() != tt.expectedReady {
				t.Errorf("IsReady() = %v, want %v", validation.IsReady(), tt.expectedReady)
			}
			if len(validation.Missing) != tt.expectedMissing {
				t.Errorf("Missing = %v, want %d targets", validation.Missing, tt.expectedMissing)
			}
			if validation.AvailableCount != tt.expectedAvailble {
				t.Errorf("AvailableCount = %d, want %d", validation.AvailableCount, tt.expectedAvailble)
			}
			if validation.ExpectedCount != 2 {
				t.Errorf("ExpectedCount = %d, want 2", validation.ExpectedCount)
			}
			if tt.expectedReady && validation.ErrorMessage() != "" {
				t.Errorf("ErrorMessage() = %q, want empty", validation.ErrorMessage())
			}
			if !tt.expectedReady && validation.ErrorMessage() == "" {
				t.Error("ErrorMessage() should not be empty")
			}
		})
	}
}

func TestValidateRelease_ErrorMessage(t *testing.T) {
	validation := NewReleaseService().ValidateRelease(testManifest(), "1.0.0",
		[]string{"tool-linux-amd64-1.0.0.tar.gz", "tool-linux-arm-1.0.0.tar.gz"}, nil)

	msg := validation.ErrorMessage()
	for _, want := range []string{"expected: 2, have: 1", "Missing: darwin/amd64", "Unexpected: tool-linux-arm-1.0.0.tar.gz"} {
		if !strings.Contains(msg, want) {
			t.Errorf("ErrorMessage() = %q, should contain %q", msg, want)
		}
	}
}

func TestIsArchiveOf(t *testing.T) {
	service := NewReleaseService()

	tests := []struct {
		basename string
		want     bool
	}{
		{"tool-linux-amd64-1.0.0.tar.gz", true},
		{"tool-1.0.0.tar.gz", false},
		{"tool-linux-amd64-1.0.1.tar.gz", false},
		{"tools-linux-amd64-1.0.0.tar.gz", false},
		{"tool-linux-amd64-1.0.0.zip", false},
	}

	for _, tt := range tests {
		if got := service.isArchiveOf("tool", "1.0.0", tt.basename); got != tt.want {
			t.Errorf("isArchiveOf(%q) = %v, want %v", tt.basename, got, tt.want)
		}
	}
}

func TestCheckArchiveLayout(t *testing.T) {
	manifest := testManifest()
	manifest.Docs = []string{"docs/README.rst"}
	target := entities.Target{OS: "linux", Arch: "amd64"}

	tests := []struct {
		name    string
		entries []string
		wantErr string
	}{
		{
			name:    "complete",
			entries: []string{"tool-linux-amd64/", "tool-linux-amd64/README.rst", "tool-linux-amd64/tool"},
		},
		{
			name:    "missing doc",
			entries: []string{"tool-linux-amd64/", "tool-linux-amd64/tool"},
			wantErr: "tool-linux-amd64/README.rst",
		},
		{
			name:    "missing binary",
			entries: []string{"tool-linux-amd64/", "tool-linux-amd64/README.rst"},
			wantErr: "tool-linux-amd64/tool",
		},
		{
			name:    "wrong root",
			entries: []string{"tool-linux-amd64/", "tool-linux-amd64/README.rst", "tool-linux-amd64/tool", "tool"},
			wantErr: "entries outside",
		},
	}

	service := NewReleaseService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.CheckArchiveLayout(manifest, target, tt.entries)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("CheckArchiveLayout() error = %v", err)
				}
				return
			}
			if !errors.Is(err, entities.ErrPackage) {
				t.Fatalf("CheckArchiveLayout() error = %v, want ErrPackage", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("CheckArchiveLayout() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
