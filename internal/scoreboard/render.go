package scoreboard

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Render writes a column-width-aligned table of every user against every
// judged problem, plus a per-user Total column, directly porting the
// column-width computation in the original's print_stats lambda (collect
// users/problems, size every cell including headers, left-align the
// User/Problem column, right-align every score column).
func Render(w io.Writer, b *Board) {
	scores := b.Snapshot()

	userSet := map[string]struct{}{}
	problemSet := map[string]struct{}{}
	for k := range scores {
		userSet[k.User] = struct{}{}
		problemSet[k.Problem] = struct{}{}
	}

	users := sortedKeys(userSet)
	problems := sortedKeys(problemSet)

	const userCol = "User/Problem"
	const totalCol = "Total"

	width := map[string]int{userCol: len(userCol), totalCol: len(totalCol)}
	for _, p := range problems {
		width[p] = len(p)
	}

	totals := make(map[string]float64, len(users))
	for _, u := range users {
		if len(u) > width[userCol] {
			width[userCol] = len(u)
		}
		var total float64
		for _, p := range problems {
			v := scores[Key{User: u, Problem: p}]
			total += v
			if s := formatScore(v); len(s) > width[p] {
				width[p] = len(s)
			}
		}
		totals[u] = total
		if s := formatScore(total); len(s) > width[totalCol] {
			width[totalCol] = len(s)
		}
	}

	bold := color.New(color.Bold)

	header := padRight(userCol, width[userCol])
	for _, p := range problems {
		header += " | " + padRight(p, width[p])
	}
	header += " | " + padRight(totalCol, width[totalCol])
	bold.Fprintln(w, header)

	lineWidth := width[userCol]
	for _, p := range problems {
		lineWidth += 3 + width[p]
	}
	lineWidth += 3 + width[totalCol]
	fmt.Fprintln(w, strings.Repeat("-", lineWidth))

	for _, u := range users {
		row := padRight(u, width[userCol])
		for _, p := range problems {
			v := scores[Key{User: u, Problem: p}]
			row += " | " + padLeft(formatScore(v), width[p])
		}
		row += " | " + padLeft(formatScore(totals[u]), width[totalCol])
		fmt.Fprintln(w, row)
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func padRight(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

func padLeft(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return strings.Repeat(" ", w-len(s)) + s
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
