package transcribe

import "strings"

// SERResult holds detailed symbol error rate results.
type SERResult struct {
	SER           float64 // Symbol Error Rate (0.0 = perfect, 1.0+ = very bad)
	Substitutions int     // Symbols replaced with different symbols
	Insertions    int     // Extra symbols in hypothesis
	Deletions     int     // Symbols missing from hypothesis
	RefSymbols    int     // Total symbols in reference
}

// ComputeSER calculates the symbol error rate between a reference notation
// and a transcription. Tokens are compared exactly, so an octave marker
// mismatch (".Sa" vs "Sa") counts as a substitution.
// SER = (Substitutions + Insertions + Deletions) / ReferenceSymbolCount.
func ComputeSER(reference, hypothesis string) SERResult {
	refSyms := strings.Fields(reference)
	hypSyms := strings.Fields(hypothesis)

	n := len(refSyms)
	if n == 0 {
		return SERResult{}
	}

	m := len(hypSyms)

	// DP table for minimum edit distance.
	d := make([][]int, n+1)
	for i := range d {
		d[i] = make([]int, m+1)
		d[i][0] = i // deleting all ref symbols
	}
	for j := 0; j <= m; j++ {
		d[0][j] = j // inserting all hyp symbols
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if refSyms[i-1] == hypSyms[j-1] {
				d[i][j] = d[i-1][j-1]
			} else {
				sub := d[i-1][j-1] + 1
				del := d[i-1][j] + 1
				ins := d[i][j-1] + 1
				d[i][j] = min(sub, min(del, ins))
			}
		}
	}

	// Backtrace to count substitutions, insertions, deletions.
	var subs, ins, dels int
	i, j := n, m
	for i > 0 || j > 0 {
		if i > 0 && j > 0 && refSyms[i-1] == hypSyms[j-1] {
			// Match
			i--
			j--
		} else if i > 0 && j > 0 && d[i][j] == d[i-1][j-1]+1 {
			// Substitution
			subs++
			i--
			j--
		} else if i > 0 && d[i][j] == d[i-1][j]+1 {
			// Deletion (ref symbol missing from hyp)
			dels++
			i--
		} else {
			// Insertion (extra symbol in hyp)
			ins++
			j--
		}
	}

	return SERResult{
		SER:           float64(subs+ins+dels) / float64(n),
		Substitutions: subs,
		Insertions:    ins,
		Deletions:     dels,
		RefSymbols:    n,
	}
}
