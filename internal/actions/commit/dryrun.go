package commit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"bgit.dev/bgit/internal/engine"
	"bgit.dev/bgit/internal/runtime"
	"bgit.dev/bgit/internal/tui"
)

// dryRun resolves and rebuilds against the overlay store, then shows what
// the commit would change
func dryRun(ctx *runtime.Context, eng *engine.Engine, req engine.CommitRequest) (*Result, error) {
	plan, err := eng.Plan(req)
	if err != nil {
		return nil, err
	}
	res := plan.Resolution

	var (
		before []byte
		exists bool
	)
	if !res.BaseTree.IsZero() {
		entry, found, err := eng.FileAt(res.BaseTree, req.Path)
		if err != nil {
			return nil, err
		}
		if found {
			before, err = eng.Store().Blob(entry.Hash)
			if err != nil {
				return nil, err
			}
			exists = true
		}
	}

	diff := UnifiedDiff(req.Path, before, req.Content, exists)

	splog := ctx.Splog
	splog.Info("%s would commit %s to %s (%s)", tui.ColorYellow("Dry run:"), req.Path, tui.ColorCyan(req.Branch), describe(res))
	splog.Info("tree %s", tui.ColorDim(plan.Tree.String()))
	if !plan.TreeChanged {
		splog.Info("No changes to %s on %s", req.Path, req.Branch)
	} else {
		splog.Newline()
		splog.Page(diff)
	}

	return &Result{Plan: plan, Diff: diff}, nil
}

func describe(res *engine.Resolution) string {
	switch res.Kind {
	case engine.BranchSeeding:
		return "new branch from " + res.Source.Short()
	case engine.BranchCreating:
		return "new branch from HEAD"
	case engine.BranchOrphan:
		return "new orphan branch"
	default:
		return "parent " + res.Parent.String()[:12]
	}
}

// UnifiedDiff renders the change of path from before to after. A file that
// does not exist yet is diffed against /dev/null.
func UnifiedDiff(path string, before, after []byte, existed bool) string {
	fromFile := "a/" + path
	if !existed {
		fromFile = "/dev/null"
	}
	toFile := "b/" + path

	if existed && bytes.Equal(before, after) {
		return ""
	}
	if isBinary(before) || isBinary(after) {
		return fmt.Sprintf("Binary files %s and %s differ\n", fromFile, toFile)
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  3,
	})
	if err != nil {
		return fmt.Sprintf("(diff unavailable: %v)\n", err)
	}
	return diff
}

// splitLines keeps line endings; a missing final newline is added so the
// last line still renders on its own
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}

func isBinary(content []byte) bool {
	probe := content
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
