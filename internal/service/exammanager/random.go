package exammanager

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Shuffler - источник случайных перестановок.
// В продакшене используется криптостойкий источник, в тестах - детерминированный.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// cryptoSource реализует rand.Source поверх crypto/rand.
// Состояния нет, поэтому источник безопасен для параллельного использования.
type cryptoSource struct{}

func (cryptoSource) Uint64() uint64 {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// NewSecureShuffler создает Shuffler поверх crypto/rand
func NewSecureShuffler() Shuffler {
	return rand.New(cryptoSource{})
}

// lockedShuffler сериализует доступ к генератору с состоянием
type lockedShuffler struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedShuffler) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

// NewSeededShuffler создает воспроизводимый Shuffler (PCG) для тестов и отладки
func NewSeededShuffler(seed uint64) Shuffler {
	return &lockedShuffler{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}
