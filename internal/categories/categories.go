// internal/categories/categories.go
//
// Category pool management and the random category picker.
//
// Responsibilities:
//   - Load the pool of known-valid category ids from an environment-provided
//     file or fall back to the embedded default.
//   - Pick N distinct ids uniformly at random without replacement.
//
// Initialization behavior (Init):
//   1. If CATEGORY_POOL_FILE is set, load ids from that file.
//   2. Otherwise use assets/pool.txt.
//
// Constraints:
//   • One positive integer id per line; '#' comments and blanks are ignored.
//   • Duplicate ids are collapsed so a pick can never repeat a category.
//   • Initialization is run once (sync.Once).

package categories

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/robalobadob/jeopardy/assets"
)

var (
	initOnce   sync.Once
	pool       []int
	initialErr error
)

// ConfigurationError means the pool cannot satisfy a pick.
type ConfigurationError struct {
	Requested int
	Available int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("categories: cannot pick %d distinct ids from a pool of %d", e.Requested, e.Available)
}

// Init loads the category pool exactly once.
// Returns an error if the pool ends up empty or a line is not an id.
func Init() error {
	initOnce.Do(func() {
		var lines []string
		var err error
		if path := os.Getenv("CATEGORY_POOL_FILE"); path != "" {
			lines, err = readPoolFile(path)
		} else {
			lines, err = assets.PoolList()
		}
		if err != nil {
			initialErr = err
			return
		}
		pool, initialErr = ParsePool(lines)
	})
	return initialErr
}

// readPoolFile loads non-comment lines from a file.
func readPoolFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// ParsePool converts lines into a de-duplicated id list, keeping first-seen order.
func ParsePool(lines []string) ([]int, error) {
	seen := make(map[int]struct{}, len(lines))
	out := make([]int, 0, len(lines))
	for _, line := range lines {
		id, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("categories: invalid id %q", line)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, errors.New("categories: pool is empty")
	}
	return out, nil
}

// Pool returns a copy of the loaded pool.
func Pool() []int {
	return append([]int(nil), pool...)
}

// Pick returns n distinct ids from the loaded pool using crypto/rand.
func Pick(n int) ([]int, error) {
	return PickFrom(pool, n, cryptoIntn)
}

// PickFrom draws n distinct ids from src without replacement.
// intn must return a uniform value in [0, k).
//
// Each step picks a random index into the remaining candidates, moves it to
// the result and drops it from the candidates (partial Fisher-Yates). src is
// not modified.
func PickFrom(src []int, n int, intn func(k int) int) ([]int, error) {
	if n <= 0 || n > len(src) {
		return nil, &ConfigurationError{Requested: n, Available: len(src)}
	}
	remaining := append([]int(nil), src...)
	out := make([]int, 0, n)
	for len(out) < n {
		i := intn(len(remaining))
		out = append(out, remaining[i])
		last := len(remaining) - 1
		remaining[i] = remaining[last]
		remaining = remaining[:last]
	}
	return out, nil
}

// cryptoIntn is a uniform [0,k) source backed by crypto/rand.
func cryptoIntn(k int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(k)))
	if err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return int(nBig.Int64())
}
