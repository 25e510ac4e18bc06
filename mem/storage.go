package mem

import (
	"errors"
	"sync"
)

// Constants for data sizes
const (
	KB = 1 << 10
	MB = 1 << 20
	GB = 1 << 30
)

// A Storage keeps the data of a memory component. Memory is allocated in
// units lazily, so a large address space can be modeled without committing
// host memory up front.
type Storage struct {
	sync.Mutex

	Capacity uint64
	unitSize uint64
	units    map[uint64][]byte
}

// NewStorage creates a storage of a certain capacity
func NewStorage(capacity uint64) *Storage {
	s := new(Storage)

	s.Capacity = capacity
	s.unitSize = 4 * KB
	s.units = make(map[uint64][]byte)

	return s
}

func (s *Storage) unitFor(addr uint64) ([]byte, uint64) {
	unitID := addr / s.unitSize
	unit, found := s.units[unitID]
	if !found {
		unit = make([]byte, s.unitSize)
		s.units[unitID] = unit
	}

	return unit, addr % s.unitSize
}

// Read reads a certain number of bytes from the storage
func (s *Storage) Read(addr uint64, byteSize uint64) ([]byte, error) {
	s.Lock()
	defer s.Unlock()

	if addr+byteSize > s.Capacity {
		return nil, errors.New("accessing physical address beyond the storage capacity")
	}

	data := make([]byte, byteSize)
	for i := uint64(0); i < byteSize; {
		unit, offset := s.unitFor(addr + i)
		n := copy(data[i:], unit[offset:])
		i += uint64(n)
	}

	return data, nil
}

// Write writes data into the storage
func (s *Storage) Write(addr uint64, data []byte) error {
	s.Lock()
	defer s.Unlock()

	if addr+uint64(len(data)) > s.Capacity {
		return errors.New("accessing physical address beyond the storage capacity")
	}

	for i := 0; i < len(data); {
		unit, offset := s.unitFor(addr + uint64(i))
		n := copy(unit[offset:], data[i:])
		i += n
	}

	return nil
}
