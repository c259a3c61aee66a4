package similarity

// Ratio computes the similarity of two strings on a 0-100 scale from the
// insert/delete edit distance: 100 * 2*LCS(a,b) / (len(a)+len(b)).
// 100 means identical, 0 means nothing in common. Runes are compared
// exactly; callers normalise case first.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	lenA, lenB := len(ra), len(rb)

	// Empty string cases
	if lenA == 0 && lenB == 0 {
		return 100
	}
	if lenA == 0 || lenB == 0 {
		return 0
	}

	// Ensure a is the shorter string for optimisation
	if lenA > lenB {
		ra, rb = rb, ra
		lenA, lenB = lenB, lenA
	}

	// Longest common subsequence using only two rows of the matrix
	prev := make([]int, lenA+1)
	curr := make([]int, lenA+1)

	for j := 1; j <= lenB; j++ {
		for i := 1; i <= lenA; i++ {
			if ra[i-1] == rb[j-1] {
				curr[i] = prev[i-1] + 1
			} else if prev[i] >= curr[i-1] {
				curr[i] = prev[i]
			} else {
				curr[i] = curr[i-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[lenA]
	return 200 * lcs / (lenA + lenB)
}

// BestMatch returns the candidate scoring highest against query, and its
// score. Earlier candidates win ties; ("", 0) when no candidate scores
// above zero.
func BestMatch(query string, candidates []string) (string, int) {
	best := ""
	bestScore := 0

	for _, candidate := range candidates {
		if score := Ratio(query, candidate); score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	return best, bestScore
}
