package cache

import "time"

// expire 立即讓項目過期
func (m *MemoryStore) expire(ingredient string) {
	m.cache.Set(generateKey(ingredient), nil, time.Nanosecond)
}
