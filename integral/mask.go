package integral

// CandidateMask отмечает значения подключа, которые еще не исключены
type CandidateMask [256]bool

func NewCandidateMask() *CandidateMask {
	m := new(CandidateMask)
	for i := range m {
		m[i] = true
	}
	return m
}

// Count возвращает число оставшихся кандидатов
func (m *CandidateMask) Count() int {
	n := 0
	for _, ok := range m {
		if ok {
			n++
		}
	}
	return n
}

func (m *CandidateMask) Plausible(g byte) bool {
	return m[g]
}

// Survivors возвращает оставшихся кандидатов по возрастанию
func (m *CandidateMask) Survivors() []byte {
	out := make([]byte, 0, m.Count())
	for g, ok := range m {
		if ok {
			out = append(out, byte(g))
		}
	}
	return out
}

// Intersect оставляет только кандидатов, прошедших проверку на очередном наборе
func (m *CandidateMask) Intersect(verdicts *[256]bool) {
	for g := range m {
		m[g] = m[g] && verdicts[g]
	}
}

// Solved сообщает, что осталось ровно n кандидатов
func (m *CandidateMask) Solved(n int) bool {
	return m.Count() == n
}
