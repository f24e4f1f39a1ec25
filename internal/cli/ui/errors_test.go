package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
)

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name     string
		opts     MessageOptions
		contains []string
		absent   []string
	}{
		{
			name: "error with code",
			opts: MessageOptions{
				Level:   LevelError,
				Code:    "E100",
				Context: "bone not found",
				Problem: "UperArm_L",
			},
			contains: []string{"❌", "BONE NOT FOUND [E100]: UperArm_L"},
		},
		{
			name: "suggestions",
			opts: MessageOptions{
				Problem:     "no match",
				Suggestions: []string{"UpperArm_L", "LowerArm_L"},
			},
			contains: []string{"Did you mean: UpperArm_L, LowerArm_L?"},
		},
		{
			name: "hints and details",
			opts: MessageOptions{
				Problem: "cannot load",
				Details: []string{"line 3: bad vector"},
				Hints:   []string{"Check the file"},
			},
			contains: []string{"   line 3: bad vector", "→ Check the file"},
			absent:   []string{"Did you mean"},
		},
		{
			name:     "warning",
			opts:     MessageOptions{Level: LevelWarning, Problem: "careful"},
			contains: []string{"⚠️ careful"},
		},
		{
			name:     "info",
			opts:     MessageOptions{Level: LevelInfo, Problem: "note"},
			contains: []string{"ℹ️ note"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			result := FormatMessage(tt.opts)
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, result)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(result, unwanted) {
					t.Errorf("expected output not to contain %q, got:\n%s", unwanted, result)
				}
			}
		})
	}
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "Armature was fixed!", true)

	if buf.String() != "✓ Armature was fixed!\n" {
		t.Errorf("unexpected success line %q", buf.String())
	}
}

func TestBoneNotFound(t *testing.T) {
	result := BoneNotFound("UperArm_L", "avatar.rig.yml", []string{"UpperArm_L"}, true)

	for _, want := range []string{
		"[E100]",
		"No bone named 'UperArm_L' in avatar.rig.yml.",
		"Did you mean: UpperArm_L?",
		"vroidbones inspect avatar.rig.yml",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in:\n%s", want, result)
		}
	}
}

func TestRigFailure(t *testing.T) {
	collision := rigerrors.New("naming", rigerrors.ErrRenameCollision, "two bones resolve to the canonical name \"Chest\"").
		WithRelated(rigerrors.New("naming", rigerrors.ErrRenameCollision, "already claimed").WithBone("J_Sec_C_Chest"))

	result := RigFailure(collision, true)
	for _, want := range []string{"[E200]", "Chest", "J_Sec_C_Chest", "naming.collision: suffix"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in:\n%s", want, result)
		}
	}

	mode := rigerrors.New("pipeline", rigerrors.ErrWrongMode, "must be in EDIT_ARMATURE mode")
	if !strings.Contains(RigFailure(mode, true), "mode: EDIT_ARMATURE") {
		t.Error("expected a mode hint for precondition errors")
	}

	plain := RigFailure(errors.New("disk full"), true)
	if !strings.Contains(plain, "❌ disk full") {
		t.Errorf("unexpected plain failure %q", plain)
	}
}

func TestConfigError(t *testing.T) {
	result := ConfigError("server.port must be between 1 and 65535", true)
	if !strings.Contains(result, "CONFIGURATION ERROR: server.port") {
		t.Errorf("unexpected config error:\n%s", result)
	}
}
