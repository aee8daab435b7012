package sparseimage

import "context"

// Write stages data into the pending list at addr. It does not touch the
// backing device; call Flush to commit. Write always succeeds against an
// in-range address regardless of whether the corresponding bytes are cached
// (spec §4.2: writes never require a read-fetch).
//
// The incoming range is processed sector by sector. A sector whose bytes are
// fully accounted for by the read and pending lists is materialized in full
// and queued as one sector-aligned pending segment (or its existing pending
// coverage is dropped, if the materialized result turns out to match the
// read baseline exactly); a sector that is only partially cached queues just
// the minimal differing byte-run, so memory stays bounded when writing
// blind against an unfetched region.
func (s *Store) Write(ctx context.Context, addr int64, data []byte) error {
	if err := s.checkRange(addr, int64(len(data))); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sectorSize := int64(s.options.SectorSize)
	end := addr + int64(len(data))

	for sectorLo := (addr / sectorSize) * sectorSize; sectorLo < end; sectorLo += sectorSize {
		sectorHi := sectorLo + sectorSize
		if sectorHi > s.size {
			sectorHi = s.size
		}

		iLo, iHi := sectorLo, sectorHi
		if iLo < addr {
			iLo = addr
		}
		if iHi > end {
			iHi = end
		}
		if iLo >= iHi {
			continue
		}
		writeSlice := data[iLo-addr : iHi-addr]

		if _, _, hasGap := s.firstUncachedGapLocked(sectorLo, sectorHi-sectorLo); !hasGap {
			s.placeFullSectorLocked(sectorLo, sectorHi, iLo, writeSlice)
			continue
		}
		s.placePartialSectorLocked(iLo, iHi, writeSlice)
	}

	return nil
}

// placeFullSectorLocked handles a sector whose bytes are entirely covered by
// the read and pending lists. It materializes the sector's current
// effective content, overwrites the written sub-range, and either queues the
// whole sector as one pending segment or — if the result matches the read
// baseline exactly — drops any pending coverage of the sector instead
// (spec §4.2 point 2 and point 3; scenario 3 in §8). Caller must hold s.mu.
func (s *Store) placeFullSectorLocked(sectorLo, sectorHi, writeAt int64, writeSlice []byte) {
	buf := s.effectiveMaterializeLocked(sectorLo, sectorHi)
	copy(buf[writeAt-sectorLo:], writeSlice)

	baseline := s.read.Materialize(sectorLo, sectorHi, erasedByte)
	if bytesEqual(buf, baseline) {
		s.pending.Remove(sectorLo, sectorHi)
		return
	}
	s.pending.Insert(sectorLo, buf)
}

// placePartialSectorLocked handles a sector that is only partially cached:
// rather than materialize the whole sector, it queues just the contiguous
// sub-runs of the write that actually change the effective content. A byte
// that is already covered (by either list) and already equal to the
// incoming byte is left untouched; an uncovered byte is always treated as
// differing, since its true content is unknown. Each completed run is then
// checked against the read baseline the same way placeFullSectorLocked
// checks a whole sector: a run that lies entirely inside the read cache and
// ends up byte-for-byte identical to it is pruned from pending instead of
// inserted (a run touching an uncached byte is always queued), so a write that
// reverts earlier pending bytes back to their cached value drops them
// rather than re-queuing them (spec §4.2 point 3). Caller must hold s.mu.
func (s *Store) placePartialSectorLocked(lo, hi int64, writeSlice []byte) {
	runStart := int64(-1)

	flush := func(end int64) {
		if runStart < 0 {
			return
		}
		data := writeSlice[runStart-lo : end-lo]
		baseline := s.read.Materialize(runStart, end, erasedByte)
		if s.read.Covered(runStart, end-runStart) && bytesEqual(data, baseline) {
			s.pending.Remove(runStart, end)
		} else {
			s.pending.Insert(runStart, data)
		}
		runStart = -1
	}

	for a := lo; a < hi; a++ {
		wb := writeSlice[a-lo]
		rb, rOK := s.read.ByteAt(a)
		pb, pOK := s.pending.ByteAt(a)

		covered := rOK || pOK
		var current byte
		switch {
		case pOK:
			current = pb
		case rOK:
			current = rb
		}

		if covered && current == wb {
			flush(a)
			continue
		}
		if runStart < 0 {
			runStart = a
		}
	}
	flush(hi)
}

// Fill stages length bytes of value starting at addr, the bulk-write
// counterpart to Write used for erase-emulation and pre-image seeding.
func (s *Store) Fill(ctx context.Context, addr, length int64, value byte) error {
	if err := s.checkRange(addr, length); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	return s.Write(ctx, addr, fillBytes(length, value))
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
