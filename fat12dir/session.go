package fat12dir

import (
	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12alloc"
	"github.com/gofat12/fat12edit/fat12fat"
)

// Session bundles the image, its parsed boot sector, the decoded FAT
// table, and the cluster allocator -- every directory/file operation needs
// all four.
type Session struct {
	Image *fat12.Image
	Boot  *fat12.BootSector
	FAT   *fat12fat.Table
	Alloc *fat12alloc.Allocator
}

// Open loads the FAT table and builds the cluster allocator for an already
// parsed image, producing a ready-to-use Session.
func Open(img *fat12.Image, boot *fat12.BootSector) (*Session, error) {
	table, err := fat12fat.Load(img, boot)
	if err != nil {
		return nil, err
	}
	alloc, err := fat12alloc.New(img, boot, table)
	if err != nil {
		return nil, err
	}
	return &Session{Image: img, Boot: boot, FAT: table, Alloc: alloc}, nil
}

// clustersOfDir returns every cluster in a non-root directory's chain. It
// must not be called with the root sentinel (cluster 0).
func (s *Session) clustersOfDir(dir fat12.ClusterID) ([]fat12.ClusterID, error) {
	clusters, _, err := s.FAT.Chain(dir)
	return clusters, err
}
