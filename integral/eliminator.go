package integral

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Wbeaching/Integral-attack-on-AES/rijndael"
)

// RoundInverter снимает последний раунд шифра
type RoundInverter interface {
	InvSBox() [256]byte
	UndoAddRoundKey(key, state *rijndael.Block)
	UndoShiftRows(state *rijndael.Block)
	UndoSubBytes(state *rijndael.Block, table *[256]byte)
}

// Eliminator перебирает значения байта position последнего раундового ключа
// и проверяет сбалансированность состояния перед последним раундом
type Eliminator struct {
	inverter     RoundInverter
	invSBox      [256]byte
	position     int
	readPosition int
	workers      int
}

// NewEliminator создает проверку для байта position; workers > 1 включает параллельный перебор
func NewEliminator(inverter RoundInverter, position int, workers int) (*Eliminator, error) {
	if err := checkPosition(position); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	return &Eliminator{
		inverter:     inverter,
		invSBox:      inverter.InvSBox(),
		position:     position,
		readPosition: rijndael.UnshiftedPosition(position),
		workers:      workers,
	}, nil
}

func (e *Eliminator) Position() int {
	return e.position
}

// Sum снимает последний раунд со всех блоков при догадке g и возвращает сумму целевого байта
func (e *Eliminator) Sum(set *CipherTextSet, g byte) byte {
	var key rijndael.Block
	key[e.position] = g

	var sum byte
	for i := range set {
		state := set[i]
		// порядок важен: ключ, затем строки, затем подстановка
		e.inverter.UndoAddRoundKey(&key, &state)
		e.inverter.UndoShiftRows(&state)
		e.inverter.UndoSubBytes(&state, &e.invSBox)
		sum ^= state[e.readPosition]
	}
	return sum
}

// Verdicts возвращает для каждой догадки, обнуляется ли сумма на наборе
func (e *Eliminator) Verdicts(set *CipherTextSet) [256]bool {
	var verdicts [256]bool

	if e.workers == 1 {
		for g := range verdicts {
			verdicts[g] = e.Sum(set, byte(g)) == 0
		}
		return verdicts
	}

	var group errgroup.Group
	group.SetLimit(e.workers)
	for g := range verdicts {
		g := g
		group.Go(func() error {
			verdicts[g] = e.Sum(set, byte(g)) == 0
			return nil
		})
	}
	_ = group.Wait()

	return verdicts
}

// EliminateSet сужает mask по набору; пустая маска — ContradictionError
func (e *Eliminator) EliminateSet(set *CipherTextSet, mask *CandidateMask) error {
	verdicts := e.Verdicts(set)
	mask.Intersect(&verdicts)

	if mask.Count() == 0 {
		return &ContradictionError{Position: e.position}
	}
	return nil
}

// Eliminate проверяет размеры набора и сужает mask; при неверном размере mask не меняется
func (e *Eliminator) Eliminate(blocks [][]byte, mask *CandidateMask) error {
	set, err := NewCipherTextSet(blocks)
	if err != nil {
		return fmt.Errorf("набор шифртекстов отклонен: %w", err)
	}
	return e.EliminateSet(set, mask)
}
