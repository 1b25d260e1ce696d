package answers

import (
	"math/rand/v2"
	"sync"
)

// DefaultDistractorPool is the baseline vocabulary mixed into every choice set.
var DefaultDistractorPool = []string{
	"salam", "shukran", "bslama", "labas", "wakha", "safi",
	"bzzaf", "chwiya", "yallah", "inshallah", "mr7ba", "l7amdullah",
}

const distractorCount = 3

type Choices struct {
	Options      []string
	CorrectIndex int
}

// DistractorGenerator builds multiple-choice option sets. The random source is
// injected so option order can be reproduced in tests.
type DistractorGenerator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	pool []string
}

func NewDistractorGenerator(rng *rand.Rand) *DistractorGenerator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &DistractorGenerator{rng: rng, pool: DefaultDistractorPool}
}

// WithPool replaces the baseline pool.
func (g *DistractorGenerator) WithPool(pool []string) *DistractorGenerator {
	g.pool = append([]string(nil), pool...)
	return g
}

// BuildChoices returns correct plus up to three distractors drawn from the
// other session answers and the baseline pool, shuffled.
func (g *DistractorGenerator) BuildChoices(correct string, otherAnswers []string) Choices {
	candidates := make([]string, 0, len(otherAnswers)+len(g.pool))
	seen := map[string]struct{}{correct: {}}
	for _, list := range [][]string{otherAnswers, g.pool} {
		for _, a := range list {
			if a == "" {
				continue
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			candidates = append(candidates, a)
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.shuffle(candidates)
	if len(candidates) > distractorCount {
		candidates = candidates[:distractorCount]
	}

	options := append([]string{correct}, candidates...)
	g.shuffle(options)

	idx := -1
	for i, o := range options {
		if o == correct {
			idx = i
			break
		}
	}
	return Choices{Options: options, CorrectIndex: idx}
}

// Permutation returns a shuffled ordering of 0..n-1.
func (g *DistractorGenerator) Permutation(n int) []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Perm(n)
}

func (g *DistractorGenerator) shuffle(s []string) {
	g.rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
