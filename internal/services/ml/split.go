package ml

import (
	"math"
	"math/rand"
)

// splitIndices partitions [0, n) into train and test index sets via a seeded
// shuffle. The same seed and n always produce the same partition. Both sides
// keep at least one element whenever n >= 2.
func splitIndices(n int, testFraction float64, seed int64) (train, test []int) {
	if n == 0 {
		return nil, nil
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	nTest := int(math.Round(float64(n) * testFraction))
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}

	test = perm[:nTest]
	train = perm[nTest:]
	return train, test
}
