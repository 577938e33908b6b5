// This file is part of GamePawd.
//
// GamePawd is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GamePawd is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GamePawd.  If not, see <https://www.gnu.org/licenses/>.

// Package firmware loads flash.bin / drc_fw.bin images into a Core's SPI
// FLASH model at boot (spec §6), and records what it found for the optional
// CBOR boot-log sidecar cmd/drc9 can dump.
package firmware

import (
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/Hydr8gon/GamePawd/internal/curated"
)

// Loader is the narrow slice of hardware/spi.Spi the loader needs.
type Loader interface {
	LoadFlashImage(image []byte) error
	LoadContainer(container []byte) error
}

// PartitionEntry records one LVC_-tagged partition found while scanning a
// firmware container, for the optional boot-log sidecar.
type PartitionEntry struct {
	Tag    string `cbor:"tag"`
	Offset uint32 `cbor:"offset"`
	Length uint32 `cbor:"length"`
}

// BootLog is the record written to the CBOR sidecar when requested.
type BootLog struct {
	Path       string            `cbor:"path"`
	Kind       string            `cbor:"kind"` // "raw" or "container"
	Partitions []PartitionEntry  `cbor:"partitions,omitempty"`
}

// LoadRaw reads a raw FLASH image (flash.bin) from path and maps it through
// loader.LoadFlashImage.
func LoadRaw(loader Loader, path string) (*BootLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, curated.Errorf("reading firmware image %q: %w", path, err)
	}
	if err := loader.LoadFlashImage(data); err != nil {
		return nil, err
	}
	return &BootLog{Path: path, Kind: "raw"}, nil
}

// LoadContainer reads a packaged firmware container (drc_fw.bin) from path,
// scans it for LVC_-tagged partitions, and maps the one it selects through
// loader.LoadContainer. The scan itself happens inside hardware/spi; this
// function re-scans only to populate the boot log (spec §4.7 "Boot
// mapping"), so a malformed container is still reported as a single
// curated error either way.
func LoadContainer(loader Loader, path string) (*BootLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, curated.Errorf("reading firmware container %q: %w", path, err)
	}
	if err := loader.LoadContainer(data); err != nil {
		return nil, err
	}
	return &BootLog{Path: path, Kind: "container", Partitions: scanPartitions(data)}, nil
}

// scanPartitions re-walks the container for LVC_ tags purely to report them;
// it has no bearing on what was actually mapped.
func scanPartitions(container []byte) []PartitionEntry {
	var entries []PartitionEntry
	for i := 0; i+12 <= len(container); i++ {
		tag := string(container[i+8 : i+12])
		if tag != "LVC_" {
			continue
		}
		offset := le32(container, i)
		length := le32(container, i+4)
		if offset+length > uint32(len(container)) {
			continue
		}
		entries = append(entries, PartitionEntry{Tag: tag, Offset: offset, Length: length})
	}
	return entries
}

func le32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

// WriteBootLogCBOR encodes log and writes it to path, for offline tooling
// (spec's DOMAIN STACK cbor/v2 wiring). Not load-bearing for emulation.
func WriteBootLogCBOR(log *BootLog, path string) error {
	data, err := cbor.Marshal(log)
	if err != nil {
		return curated.Errorf("encoding boot log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return curated.Errorf("writing boot log %q: %w", path, err)
	}
	return nil
}
