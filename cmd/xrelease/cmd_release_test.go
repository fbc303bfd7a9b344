package main

import "testing"

func TestShowProgress(t *testing.T) {
	tests := []struct {
		name        string
		quiet       bool
		jsonLogs    bool
		interactive bool
		want        bool
	}{
		{name: "interactive", interactive: true, want: true},
		{name: "quiet", quiet: true, interactive: true, want: false},
		{name: "json logs", jsonLogs: true, interactive: true, want: false},
		{name: "not a terminal", want: false},
		{name: "quiet and not a terminal", quiet: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := showProgress(tt.quiet, tt.jsonLogs, tt.interactive); got != tt.want {
				t.Errorf("showProgress(%v, %v, %v) = %v, want %v", tt.quiet, tt.jsonLogs, tt.interactive, got, tt.want)
			}
		})
	}
}
