package game

import (
	"crypto/rand"
	"log"
	"math/big"
	mrand "math/rand"
)

// randomSource yields a uniformly distributed int in [0, n). Assignment
// draws fresh values from it on every call; no state is reused between
// assignments beyond the source itself.
type randomSource interface {
	Intn(n int) int
}

// cryptoSource draws from the operating system's entropy pool. When that
// fails it logs once and falls back to the seeded math/rand global, which
// keeps shuffles running on entropy-starved hosts. crypto/rand.Int is
// rejection-sampled, so draws carry no modulo bias.
type cryptoSource struct {
	degraded bool
}

func (s *cryptoSource) Intn(n int) int {
	j, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		if !s.degraded {
			log.Printf("⚠️ crypto source unavailable, using pseudorandom shuffles: %v", err)
			s.degraded = true
		}
		return mrand.Intn(n)
	}
	return int(j.Int64())
}

// seededSource is a deterministic source for tests. Production assigners
// never use it.
type seededSource struct {
	r *mrand.Rand
}

func newSeededSource(seed int64) *seededSource {
	return &seededSource{r: mrand.New(mrand.NewSource(seed))}
}

func (s *seededSource) Intn(n int) int {
	return s.r.Intn(n)
}

// shuffleRoles permutes the pool in place with a Fisher-Yates walk: i runs
// from the last index down to 1, j is drawn uniformly from [0, i], and the
// two elements swap. Every permutation of the pool is equally likely.
func shuffleRoles(pool []RoleDefinition, rng randomSource) {
	for i := len(pool) - 1; i >= 1; i-- {
		j := rng.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
}
