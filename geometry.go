package fat12

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
)

// knownGeometry is a human-readable label for a standard floppy geometry,
// keyed by the fields that appear directly in the BPB. Used purely for
// cosmetic `info` output -- it never changes which geometries this module
// will load, since only the single 1.44 MiB layout is ever read or written.
type knownGeometry struct {
	Name              string `csv:"name"`
	BytesPerSector    uint16 `csv:"bytes_per_sector"`
	SectorsPerCluster uint8  `csv:"sectors_per_cluster"`
	NumFATs           uint8  `csv:"num_fats"`
	RootEntryCount    uint16 `csv:"root_entry_count"`
	TotalSectors      uint32 `csv:"total_sectors"`
	Media             uint8  `csv:"media"`
}

//go:embed known_geometries.csv
var knownGeometriesCSV string

var knownGeometries []knownGeometry

func init() {
	knownGeometries = make([]knownGeometry, 0, 4)
	err := gocsv.UnmarshalToCallback(
		strings.NewReader(knownGeometriesCSV),
		func(row knownGeometry) error {
			knownGeometries = append(knownGeometries, row)
			return nil
		},
	)
	if err != nil {
		panic(fmt.Sprintf("corrupt built-in geometry table: %s", err))
	}
}

// DescribeGeometry returns a human name for a BPB that matches one of the
// catalogued standard geometries (e.g. "3.5\" HD, 1.44 MiB"), or "" if the
// BPB doesn't match any entry. Used only to decorate the `info` command.
func DescribeGeometry(boot *BootSector) string {
	for _, g := range knownGeometries {
		if g.BytesPerSector == boot.BytesPerSector &&
			g.SectorsPerCluster == boot.SectorsPerClus &&
			g.NumFATs == boot.NumFATs &&
			g.RootEntryCount == boot.RootEntryCount &&
			g.TotalSectors == boot.totalSectors() &&
			g.Media == boot.Media {
			return g.Name
		}
	}
	return ""
}
