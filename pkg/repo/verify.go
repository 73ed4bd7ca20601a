package repo

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/odvcencio/tinygit/pkg/object"
)

// VerifyReport summarizes a Verify run.
type VerifyReport struct {
	Objects int
	ByType  map[object.ObjectType]int
}

// Verify checks every object reachable from root (a commit or tree): each
// must exist, inflate, hash back to its own name and parse as its kind.
func (r *Repo) Verify(root object.Hash) (*VerifyReport, error) {
	set, err := r.Store.ReachableSet([]object.Hash{root})
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	hashes := make([]object.Hash, 0, len(set))
	for h := range set {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return bytes.Compare(hashes[i][:], hashes[j][:]) < 0 })

	report := &VerifyReport{ByType: make(map[object.ObjectType]int)}
	for _, h := range hashes {
		objType, err := r.Store.Verify(h)
		if err != nil {
			return nil, fmt.Errorf("verify: %w", err)
		}
		report.Objects++
		report.ByType[objType]++
	}
	return report, nil
}
