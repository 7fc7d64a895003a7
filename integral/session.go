package integral

import (
	"errors"
	"fmt"
	"io"

	"github.com/ledgerwatch/log/v3"

	"github.com/Wbeaching/Integral-attack-on-AES/rijndael"
)

// Число наборов по умолчанию, как в исходной постановке атаки
const DefaultMaxSets = 4

type State int

const (
	AllPlausible State = iota
	PartiallyPruned
	FurtherPruned
	Solved
	Ambiguous
	Contradiction
)

func (s State) String() string {
	switch s {
	case AllPlausible:
		return "all-plausible"
	case PartiallyPruned:
		return "partially-pruned"
	case FurtherPruned:
		return "further-pruned"
	case Solved:
		return "solved"
	case Ambiguous:
		return "ambiguous"
	case Contradiction:
		return "contradiction"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Cipher — шифр с обратными примитивами последнего раунда
type Cipher interface {
	Encrypter
	RoundInverter
}

type Options struct {
	// Position — активный байт открытого текста и байт последнего раундового ключа
	Position int
	// MaxSets ограничивает число обработанных наборов; 0 — DefaultMaxSets
	MaxSets int
	// Constants — константы заполнения наборов по порядку; пусто — 0x00, 0x01, ...
	Constants []byte
	// ExpectedSurvivors — при скольких кандидатах байт считается найденным; 0 — 1
	ExpectedSurvivors int
	Workers           int
	Logger            log.Logger
}

type Result struct {
	State     State
	Position  int
	Sets      int
	Survivors []byte
}

// Session — одна атака на один байт подключа; сессии не разделяют состояние
type Session struct {
	cipher    Encrypter
	schedule  rijndael.Schedule
	elim      *Eliminator
	mask      *CandidateMask
	constants []byte
	used      map[byte]bool
	maxSets   int
	expected  int
	sets      int
	state     State
	log       log.Logger
	metrics   *sessionMetrics
}

func NewSession(c Cipher, ks rijndael.Schedule, opts Options) (*Session, error) {
	elim, err := NewEliminator(c, opts.Position, opts.Workers)
	if err != nil {
		return nil, err
	}

	maxSets := opts.MaxSets
	if maxSets == 0 {
		maxSets = DefaultMaxSets
		if len(opts.Constants) > 0 {
			maxSets = len(opts.Constants)
		}
	}
	if maxSets < 1 || maxSets > SetSize {
		return nil, fmt.Errorf("число наборов должно быть от 1 до %d, получено %d", SetSize, maxSets)
	}

	constants := opts.Constants
	if len(constants) == 0 {
		constants = make([]byte, maxSets)
		for i := range constants {
			constants[i] = byte(i)
		}
	}
	seen := make(map[byte]bool, len(constants))
	for _, c := range constants {
		if seen[c] {
			return nil, fmt.Errorf("константа 0x%02X повторяется: наборы должны различаться", c)
		}
		seen[c] = true
	}

	expected := opts.ExpectedSurvivors
	if expected == 0 {
		expected = 1
	}
	if expected < 1 || expected > SetSize {
		return nil, fmt.Errorf("ожидаемое число кандидатов должно быть от 1 до %d, получено %d", SetSize, expected)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New("component", "integral")
	}

	s := &Session{
		cipher:    c,
		schedule:  ks,
		elim:      elim,
		mask:      NewCandidateMask(),
		constants: constants,
		used:      make(map[byte]bool),
		maxSets:   maxSets,
		expected:  expected,
		state:     AllPlausible,
		log:       logger.New("position", opts.Position),
	}
	s.metrics = newSessionMetrics(opts.Position, func() float64 {
		return float64(s.mask.Count())
	})
	return s, nil
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Sets() int {
	return s.sets
}

// Mask возвращает копию текущей маски кандидатов
func (s *Session) Mask() *CandidateMask {
	m := *s.mask
	return &m
}

// Step обрабатывает один набор с константой constant
func (s *Session) Step(constant byte) (State, error) {
	if s.state == Contradiction {
		return s.state, &ContradictionError{Position: s.elim.Position(), Sets: s.sets}
	}
	if s.used[constant] {
		return s.state, fmt.Errorf("набор с константой 0x%02X уже обработан", constant)
	}

	set, err := Generate(constant, s.elim.Position())
	if err != nil {
		return s.state, err
	}
	if err := set.Verify(s.elim.Position()); err != nil {
		return s.state, fmt.Errorf("набор 0x%02X не сбалансирован: %w", constant, err)
	}

	cts, err := EncryptSet(s.cipher, set, s.schedule)
	if err != nil {
		return s.state, err
	}

	before := s.mask.Count()
	err = s.elim.EliminateSet(cts, s.mask)
	s.used[constant] = true
	s.sets++
	after := s.mask.Count()
	s.metrics.observe(before, after)

	var contradiction *ContradictionError
	if errors.As(err, &contradiction) {
		contradiction.Sets = s.sets
		s.state = Contradiction
		s.log.Error("Кандидатов не осталось", "constant", constant, "sets", s.sets)
		return s.state, contradiction
	}
	if err != nil {
		return s.state, err
	}

	switch {
	case after <= s.expected:
		s.state = Solved
	case s.sets == 1:
		s.state = PartiallyPruned
	default:
		s.state = FurtherPruned
	}

	s.log.Debug("Набор обработан", "constant", constant, "before", before, "after", after, "state", s.state)
	return s.state, nil
}

// Run обрабатывает наборы, пока байт не найден или не исчерпан лимит наборов
func (s *Session) Run() (*Result, error) {
	if s.state == Contradiction {
		return s.result(), &ContradictionError{Position: s.elim.Position(), Sets: s.sets}
	}

	for _, constant := range s.constants {
		if s.state == Solved || s.sets >= s.maxSets {
			break
		}
		if s.used[constant] {
			continue
		}
		if _, err := s.Step(constant); err != nil {
			return s.result(), err
		}
	}

	if s.state != Solved {
		s.state = Ambiguous
		s.log.Warn("Наборы исчерпаны", "sets", s.sets, "candidates", s.mask.Count())
	} else {
		s.log.Info("Байт подключа найден", "sets", s.sets, "candidates", fmt.Sprintf("%x", s.mask.Survivors()))
	}
	return s.result(), nil
}

func (s *Session) result() *Result {
	return &Result{
		State:     s.state,
		Position:  s.elim.Position(),
		Sets:      s.sets,
		Survivors: s.mask.Survivors(),
	}
}

// WriteMetrics выводит метрики сессии в формате Prometheus
func (s *Session) WriteMetrics(w io.Writer) {
	s.metrics.write(w)
}
