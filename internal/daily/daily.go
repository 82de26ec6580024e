package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"

	"github.com/robalobadob/jeopardy/internal/categories"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Picker returns a category picker that yields the same ids for every call
// on the same date, seeded by HMAC(salt, YYYY-MM-DD).
func Picker(date time.Time, salt string, pool []int) func(n int) ([]int, error) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	s1 := binary.BigEndian.Uint64(sum[:8])
	s2 := binary.BigEndian.Uint64(sum[8:16])

	return func(n int) ([]int, error) {
		rng := rand.New(rand.NewPCG(s1, s2))
		return categories.PickFrom(pool, n, rng.IntN)
	}
}
