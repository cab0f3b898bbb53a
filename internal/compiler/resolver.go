// Package compiler resolves a submission's source extension to the
// compile-command template a Configuration declares for it, and splits
// that template into its command and work-directory halves. Placeholder
// expansion and argv splitting are done by procrunner.ExpandVars and
// procrunner.Tokenize.
package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"cpjudge/internal/types"
)

const workDirKey = "@WorkDir="

// Resolve finds the CompilerItem to use for ext. When exactly one
// CompilerItem declares ext, it wins outright — the original first-match
// contract. When more than one does, resolveBySemver picks among them by
// Version/VersionConstraint; if none of them set those fields, the first
// match in declaration order wins, same as the original's linear
// find_compiler.
func Resolve(items []types.CompilerItem, ext string) (types.CompilerItem, bool) {
	var candidates []types.CompilerItem
	for _, it := range items {
		if it.Ext == ext {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) == 0 {
		return types.CompilerItem{}, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	if best, ok := resolveBySemver(candidates); ok {
		return best, true
	}
	return candidates[0], true
}

// resolveBySemver picks the highest-Version candidate that satisfies every
// VersionConstraint declared among the candidate set. It is an enrichment
// over the original format: a Configuration that never sets Version or
// VersionConstraint never reaches this function's success path (Resolve
// falls back to first-match), so it is purely additive.
func resolveBySemver(candidates []types.CompilerItem) (types.CompilerItem, bool) {
	type parsed struct {
		item types.CompilerItem
		ver  *semver.Version
	}

	var constraints []*semver.Constraints
	var versioned []parsed

	for _, c := range candidates {
		if c.Version != "" {
			v, err := semver.NewVersion(c.Version)
			if err == nil {
				versioned = append(versioned, parsed{item: c, ver: v})
			}
		}
		if c.VersionConstraint != "" {
			cs, err := semver.NewConstraint(c.VersionConstraint)
			if err == nil {
				constraints = append(constraints, cs)
			}
		}
	}

	if len(versioned) == 0 {
		return types.CompilerItem{}, false
	}

	sort.Slice(versioned, func(i, j int) bool { return versioned[i].ver.GreaterThan(versioned[j].ver) })

	for _, p := range versioned {
		ok := true
		for _, cs := range constraints {
			if !cs.Check(p.ver) {
				ok = false
				break
			}
		}
		if ok {
			return p.item, true
		}
	}

	return types.CompilerItem{}, false
}

// ParseCommandTemplate splits a CompilerItem.CommandTemplate of the form
// "CMD|@WorkDir=WDTEMPL" into its two halves, exactly the original's
// parse_compiler_cmd grammar.
func ParseCommandTemplate(template string) (rawCmd, rawWorkDir string, ok bool) {
	sep := strings.IndexByte(template, '|')
	if sep < 0 {
		return "", "", false
	}
	rawCmd = template[:sep]
	tail := template[sep+1:]
	if !strings.HasPrefix(tail, workDirKey) {
		return "", "", false
	}
	rawWorkDir = tail[len(workDirKey):]
	if rawWorkDir == "" {
		return "", "", false
	}
	return rawCmd, rawWorkDir, true
}

// ErrMalformedTemplate is returned by callers that need a sentinel for a
// template failing ParseCommandTemplate.
var ErrMalformedTemplate = fmt.Errorf("malformed compiler command template")
