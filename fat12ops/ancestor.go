package fat12ops

import fat12 "github.com/gofat12/fat12edit"

// IsAncestor walks ".." entries from `candidate` upward until root,
// returning true iff `ancestor` is encountered along the way. Root
// (cluster 0) is an ancestor of everything.
func (o *Ops) IsAncestor(ancestor, candidate fat12.ClusterID) (bool, error) {
	if ancestor == 0 {
		return true, nil
	}

	current := candidate
	seen := make(map[fat12.ClusterID]bool)
	for {
		if current == ancestor {
			return true, nil
		}
		if current == 0 {
			return false, nil
		}
		if seen[current] {
			return false, fat12.ErrInconsistent.WithMessage("cycle detected while walking '..' entries")
		}
		seen[current] = true

		parent, _, err := o.Session.LocateByName(current, "..")
		if err != nil {
			return false, err
		}
		current = parent.FirstCluster
	}
}
