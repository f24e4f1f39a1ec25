package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
)

// Level is the severity of a status message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// MessageOptions configures a status message
type MessageOptions struct {
	Level       Level
	Code        string
	Context     string
	Problem     string
	Details     []string
	Suggestions []string
	Hints       []string
	NoColor     bool
}

// FormatMessage renders a status message with optional suggestions and hints
//
// Example output:
//
//	❌ BONE NOT FOUND [E100]: UperArm_L
//	   No bone named 'UperArm_L' in rig.yml.
//
//	   Did you mean: UpperArm_L, LowerArm_L?
//
//	   → List bones: vroidbones inspect rig.yml
func FormatMessage(opts MessageOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case LevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	case LevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	default:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	}
	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	header := opts.Problem
	if opts.Context != "" {
		context := strings.ToUpper(opts.Context)
		if opts.Code != "" {
			context += " [" + opts.Code + "]"
		}
		header = context + ": " + opts.Problem
	}
	headerColor.Fprintf(&b, "%s %s\n", symbol, header)

	for _, line := range opts.Details {
		bodyColor.Fprintf(&b, "   %s\n", line)
	}

	if len(opts.Suggestions) > 0 {
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		b.WriteString("\n")
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.Hints) > 0 {
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		b.WriteString("\n")
		for _, hint := range opts.Hints {
			cyan.Fprintf(&b, "   → %s\n", hint)
		}
	}

	return b.String()
}

// WriteMessage writes a formatted status message to the writer
func WriteMessage(w io.Writer, opts MessageOptions) {
	fmt.Fprint(w, FormatMessage(opts))
}

// FormatSuccess creates a success line
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success line to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// BoneNotFound reports a lookup miss with close bone names
func BoneNotFound(query, file string, suggestions []string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:       LevelError,
		Code:        rigerrors.ErrBoneNotFound,
		Context:     "bone not found",
		Problem:     query,
		Details:     []string{fmt.Sprintf("No bone named '%s' in %s.", query, file)},
		Suggestions: suggestions,
		Hints:       []string{"List bones: vroidbones inspect " + file},
		NoColor:     noColor,
	})
}

// RigFailure renders an error returned by a pipeline stage or the document
// loader, followed by a hint for the error's category
func RigFailure(err error, noColor bool) string {
	re, ok := rigerrors.As(err)
	if !ok {
		return FormatMessage(MessageOptions{Level: LevelError, Problem: err.Error(), NoColor: noColor})
	}

	var hint string
	switch re.Category() {
	case rigerrors.CategoryPrecondition:
		hint = "Set 'mode: EDIT_ARMATURE' in the rig document and make sure it has bones"
	case rigerrors.CategoryStructural:
		if re.Code == rigerrors.ErrRenameCollision {
			hint = "Rename one of the bones, or set 'naming.collision: suffix' in vroidbones.yml"
		}
	case rigerrors.CategoryDocument:
		hint = "Rig documents are YAML (.yml, .yaml) or JSON (.json)"
	}

	out := re.FormatForTerminal(noColor)
	if hint != "" {
		cyan := color.New(color.FgCyan)
		if noColor {
			cyan.DisableColor()
		}
		out += cyan.Sprintf("\n   → %s\n", hint)
	}
	return out
}

// ConfigError creates a configuration error message
func ConfigError(message string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:   LevelError,
		Context: "configuration error",
		Problem: message,
		Hints: []string{
			"View config: cat vroidbones.yml",
			"Get help: vroidbones --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a warning message
func Warning(message string, noColor bool) string {
	return FormatMessage(MessageOptions{Level: LevelWarning, Problem: message, NoColor: noColor})
}

// Info creates an informational message
func Info(message string, noColor bool) string {
	return FormatMessage(MessageOptions{Level: LevelInfo, Problem: message, NoColor: noColor})
}
