package fat12dir

import fat12 "github.com/gofat12/fat12edit"

// deletedMarker is the first byte of a name field that marks a directory
// entry as deleted.
const deletedMarker = 0xE5

// Append writes `entry` into the first free or deleted slot in `parent`,
// extending the directory's cluster chain by one cluster if no slot is
// free and `parent` is not root. Root directories have a fixed-size entry
// region and fail with ErrRootFull instead of growing.
func (s *Session) Append(parent fat12.ClusterID, entry RawEntry) (Position, error) {
	capacity, err := s.capacity(parent)
	if err != nil {
		return Position{}, err
	}

	for i := uint(0); i < capacity; i++ {
		raw, err := s.readRaw(parent, i)
		if err != nil {
			return Position{}, err
		}
		if raw.Name[0] == 0x00 || raw.Name[0] == deletedMarker {
			if err := s.writeRaw(parent, i, entry); err != nil {
				return Position{}, err
			}
			return Position{Dir: parent, Index: i}, nil
		}
	}

	if parent == 0 {
		return Position{}, fat12.ErrRootFull.WithMessage(
			"root directory has no free entry slots")
	}

	clusters, err := s.clustersOfDir(parent)
	if err != nil {
		return Position{}, err
	}
	tail := clusters[len(clusters)-1]
	if _, err := s.Alloc.AllocateChain(1, tail); err != nil {
		return Position{}, err
	}

	index := capacity
	if err := s.writeRaw(parent, index, entry); err != nil {
		return Position{}, err
	}
	return Position{Dir: parent, Index: index}, nil
}

// MarkDeleted overwrites the first byte of the entry at `pos` with the
// deleted-entry marker, leaving the remainder of the slot and the file's
// cluster chain untouched -- deletion never reclaims clusters by itself;
// callers needing that call the allocator separately.
func (s *Session) MarkDeleted(pos Position) error {
	raw, err := s.readRaw(pos.Dir, pos.Index)
	if err != nil {
		return err
	}
	raw.Name[0] = deletedMarker
	return s.writeRaw(pos.Dir, pos.Index, raw)
}
