package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelsmith/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "speech", "synthesize", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"speech", "synthesize", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestTypedErrorsClassify(t *testing.T) {
	cause := errors.New("exit status 1")
	tests := []struct {
		name   string
		err    error
		marker error
		kind   string
	}{
		{"asset read", &services.AssetReadError{Path: "a.mp3", Err: cause}, services.ErrAssetRead, "asset_read"},
		{"assembly", &services.AssemblyError{Op: "normalize", Segment: 2, Err: cause}, services.ErrAssembly, "assembly"},
		{"insufficient", &services.InsufficientAssetsError{AudioCount: 1}, services.ErrInsufficientAssets, "insufficient_assets"},
		{"music", &services.MusicAssetError{Reason: "empty library"}, services.ErrMusicAsset, "music"},
		{"selection", fmt.Errorf("segment 3: %w", services.ErrSelectionUnavailable), services.ErrSelectionUnavailable, "selection"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("topic: %w", tc.err)
			if !errors.Is(wrapped, tc.marker) {
				t.Fatalf("expected marker match for %v", wrapped)
			}
			if got := services.Details(wrapped).Kind; got != tc.kind {
				t.Fatalf("unexpected kind %q", got)
			}
		})
	}
}

func TestAssemblyErrorKeepsCause(t *testing.T) {
	cause := errors.New("ffmpeg died")
	err := error(&services.AssemblyError{Op: "concat", Segment: -1, Err: cause})
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	var asm *services.AssemblyError
	if !errors.As(fmt.Errorf("wrap: %w", err), &asm) || asm.Op != "concat" {
		t.Fatalf("expected errors.As to find AssemblyError, got %v", asm)
	}
	if strings.Contains(err.Error(), "segment") {
		t.Fatalf("expected no segment in message: %q", err.Error())
	}
}

func TestDetailsNil(t *testing.T) {
	if d := services.Details(nil); d.Kind != "" || d.Message != "" {
		t.Fatalf("expected empty details, got %+v", d)
	}
}
