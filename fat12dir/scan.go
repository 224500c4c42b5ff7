package fat12dir

import fat12 "github.com/gofat12/fat12edit"

// Position is enough information to locate an entry again and overwrite it
// in place, without re-searching the directory (which could see a
// different entry if another operation moved things around in the
// meantime -- not a concern under this module's single-threaded model, but
// kept as a distinct type so mutators never accidentally re-derive a
// position from a stale copy).
//
// Dir is the cluster number of the containing directory (0 for root).
// Index is the entry's position within that directory, counting from 0.
type Position struct {
	Dir   fat12.ClusterID
	Index uint
}

// entriesPerSector is fixed because this module only ever works with a
// 512-byte-sector geometry and entries are 32 bytes; 512 divides evenly by
// 32, so no entry ever straddles a sector boundary.
const entriesPerSector = fat12.SectorSize / fat12.DirentSize

// location resolves a Position to the absolute sector and within-sector
// offset containing its entry; for a non-root directory it walks the
// directory's cluster chain to find that sector.
func (s *Session) location(dir fat12.ClusterID, index uint) (sector fat12.SectorID, offset int, err error) {
	if dir == 0 {
		if index >= uint(s.Boot.RootEntryCount) {
			return 0, 0, fat12.ErrRootFull.WithMessage("index beyond root directory capacity")
		}
		byteOffset := index * fat12.DirentSize
		sector = s.Boot.RootStartSector + fat12.SectorID(byteOffset/fat12.SectorSize)
		offset = int(byteOffset % fat12.SectorSize)
		return sector, offset, nil
	}

	clusters, err := s.clustersOfDir(dir)
	if err != nil {
		return 0, 0, err
	}
	clusterIdx := index / uint(s.Boot.DirentsPerCluster)
	withinCluster := index % uint(s.Boot.DirentsPerCluster)
	if clusterIdx >= uint(len(clusters)) {
		return 0, 0, fat12.ErrNotFound.WithMessage("index beyond directory's current chain length")
	}

	byteOffset := withinCluster * fat12.DirentSize
	sector = s.Boot.FirstSectorOfCluster(clusters[clusterIdx]) + fat12.SectorID(byteOffset/fat12.SectorSize)
	offset = int(byteOffset % fat12.SectorSize)
	return sector, offset, nil
}

// capacity returns the number of entry slots currently addressable in a
// directory: the fixed RootEntryCount for root, or DirentsPerCluster times
// the current chain length otherwise.
func (s *Session) capacity(dir fat12.ClusterID) (uint, error) {
	if dir == 0 {
		return uint(s.Boot.RootEntryCount), nil
	}
	clusters, err := s.clustersOfDir(dir)
	if err != nil {
		return 0, err
	}
	return uint(len(clusters)) * uint(s.Boot.DirentsPerCluster), nil
}

// readRaw reads the RawEntry at a given index within a directory.
func (s *Session) readRaw(dir fat12.ClusterID, index uint) (RawEntry, error) {
	sector, offset, err := s.location(dir, index)
	if err != nil {
		return RawEntry{}, err
	}
	sectorData, err := s.Image.ReadSectors(sector, 1)
	if err != nil {
		return RawEntry{}, err
	}
	return DecodeRawEntry(sectorData[offset : offset+fat12.DirentSize]), nil
}

// writeRaw overwrites the RawEntry at a given index within a directory.
func (s *Session) writeRaw(dir fat12.ClusterID, index uint, entry RawEntry) error {
	sector, offset, err := s.location(dir, index)
	if err != nil {
		return err
	}
	sectorData, err := s.Image.ReadSectors(sector, 1)
	if err != nil {
		return err
	}
	encoded := entry.Encode()
	copy(sectorData[offset:offset+fat12.DirentSize], encoded[:])
	return s.Image.WriteSectors(sector, sectorData)
}

// ListEntries iterates a directory's entries: a first byte of 0x00
// terminates the scan (later slots are guaranteed unused); entries with
// first byte 0xE5 are deleted and skipped. Volume-label entries are
// included (suppressed only from name lookups, see LocateByName).
func (s *Session) ListEntries(dir fat12.ClusterID) ([]Entry, []Position, error) {
	capacity, err := s.capacity(dir)
	if err != nil {
		return nil, nil, err
	}

	var entries []Entry
	var positions []Position
	for i := uint(0); i < capacity; i++ {
		raw, err := s.readRaw(dir, i)
		if err != nil {
			return nil, nil, err
		}
		if raw.Name[0] == 0x00 {
			break
		}
		if raw.Name[0] == 0xE5 {
			continue
		}
		entries = append(entries, toEntry(raw))
		positions = append(positions, Position{Dir: dir, Index: i})
	}
	return entries, positions, nil
}
