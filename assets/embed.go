package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed pool.txt web
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
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

// PoolList returns the raw lines of the embedded category pool.
func PoolList() ([]string, error) {
	return readLines("pool.txt")
}

// Web returns the static board page files rooted at web/.
func Web() fs.FS {
	sub, err := fs.Sub(FS, "web")
	if err != nil {
		panic("assets: web dir missing: " + err.Error())
	}
	return sub
}
