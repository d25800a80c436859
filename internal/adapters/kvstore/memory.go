package kvstore

// MemStore es la implementación en memoria de domain.KVStore. La usan los
// tests para inyectar estado arbitrario (incluso bytes que no son JSON) y
// observar qué queda persistido.
type MemStore struct {
	data    map[string][]byte
	failSet bool
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string][]byte{}}
}

// FailWrites hace que todo Set devuelva error, para simular un storage
// lleno o deshabilitado.
func (s *MemStore) FailWrites(fail bool) { s.failSet = fail }

func (s *MemStore) Get(key string) ([]byte, bool) {
	v, ok := s.data[key]
	if !ok {
		return nil, false
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true
}

func (s *MemStore) Set(key string, value []byte) error {
	if s.failSet {
		return ErrValueTooLarge
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

func (s *MemStore) Delete(key string) {
	delete(s.data, key)
}

// Len devuelve la cantidad de claves guardadas.
func (s *MemStore) Len() int { return len(s.data) }
