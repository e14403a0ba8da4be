package domain

// NextVersion returns the number for the next version of a model. highWater
// is the largest number ever handed out for the model (deleted versions
// included) and existing lists the numbers currently stored. The result is
// strictly greater than both, so numbers are never reused.
func NextVersion(highWater int, existing []int) int {
	max := highWater
	for _, n := range existing {
		if n > max {
			max = n
		}
	}
	return max + 1
}
