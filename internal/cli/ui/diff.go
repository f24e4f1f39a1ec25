package ui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// maxDiffCells bounds the line-matching table; larger edits fall back to a
// line-by-line comparison
const maxDiffCells = 4_000_000

// DiffResult represents the difference between a rig document and its
// rewritten form
type DiffResult struct {
	Original string
	Updated  string
	Changed  bool

	ops []diffOp
}

type diffKind int

const (
	diffSame diffKind = iota
	diffRemoved
	diffAdded
)

type diffOp struct {
	kind diffKind
	line string
	at   int // 1-based line in the original (removed, same) or updated (added) text
}

// Diff compares two versions of a document line by line
func Diff(original, updated string) *DiffResult {
	d := &DiffResult{
		Original: original,
		Updated:  updated,
		Changed:  original != updated,
	}
	if d.Changed {
		d.ops = diffLines(strings.Split(original, "\n"), strings.Split(updated, "\n"))
	}
	return d
}

// diffLines matches the longest common subsequence of lines after trimming
// the shared prefix and suffix
func diffLines(a, b []string) []diffOp {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}
	midA, midB := a[prefix:len(a)-suffix], b[prefix:len(b)-suffix]

	ops := make([]diffOp, 0, len(a)+len(b))
	for i := 0; i < prefix; i++ {
		ops = append(ops, diffOp{kind: diffSame, line: a[i], at: i + 1})
	}

	if (len(midA)+1)*(len(midB)+1) > maxDiffCells {
		for i, line := range midA {
			ops = append(ops, diffOp{kind: diffRemoved, line: line, at: prefix + i + 1})
		}
		for j, line := range midB {
			ops = append(ops, diffOp{kind: diffAdded, line: line, at: prefix + j + 1})
		}
	} else {
		ops = append(ops, lcsOps(midA, midB, prefix)...)
	}

	for i := len(a) - suffix; i < len(a); i++ {
		ops = append(ops, diffOp{kind: diffSame, line: a[i], at: i + 1})
	}
	return ops
}

func lcsOps(a, b []string, offset int) []diffOp {
	n, m := len(a), len(b)
	// lcs[i][j] is the common subsequence length of a[i:] and b[j:]
	lcs := make([][]int32, n+1)
	for i := range lcs {
		lcs[i] = make([]int32, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := []diffOp{}
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && a[i] == b[j]:
			ops = append(ops, diffOp{kind: diffSame, line: a[i], at: offset + i + 1})
			i++
			j++
		case i < n && (j == m || lcs[i+1][j] >= lcs[i][j+1]):
			ops = append(ops, diffOp{kind: diffRemoved, line: a[i], at: offset + i + 1})
			i++
		default:
			ops = append(ops, diffOp{kind: diffAdded, line: b[j], at: offset + j + 1})
			j++
		}
	}
	return ops
}

// String returns the changed lines with color highlighting
func (d *DiffResult) String() string {
	if !d.Changed {
		return color.GreenString("No changes needed")
	}

	var buf bytes.Buffer
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	for _, op := range d.ops {
		switch op.kind {
		case diffRemoved:
			red.Fprintf(&buf, "- %s\n", op.line)
		case diffAdded:
			green.Fprintf(&buf, "+ %s\n", op.line)
		}
	}
	return buf.String()
}

// UnifiedDiff returns the changes as hunks without context lines
func (d *DiffResult) UnifiedDiff(filename string) string {
	if !d.Changed {
		return ""
	}

	var buf bytes.Buffer

	// Write header
	fmt.Fprintf(&buf, "--- a/%s\n", filename)
	fmt.Fprintf(&buf, "+++ b/%s\n", filename)

	inHunk := false
	for _, op := range d.ops {
		switch op.kind {
		case diffSame:
			inHunk = false
			continue
		case diffRemoved:
			if !inHunk {
				fmt.Fprintf(&buf, "@@ -%d @@\n", op.at)
			}
			fmt.Fprintf(&buf, "-%s\n", op.line)
		case diffAdded:
			if !inHunk {
				fmt.Fprintf(&buf, "@@ +%d @@\n", op.at)
			}
			fmt.Fprintf(&buf, "+%s\n", op.line)
		}
		inHunk = true
	}
	return buf.String()
}

// Stats returns statistics about the changes
func (d *DiffResult) Stats() string {
	if !d.Changed {
		return "No changes"
	}

	added, removed := 0, 0
	for _, op := range d.ops {
		switch op.kind {
		case diffAdded:
			added++
		case diffRemoved:
			removed++
		}
	}
	return fmt.Sprintf("%d line(s) added, %d line(s) removed", added, removed)
}
