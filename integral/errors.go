package integral

import "fmt"

// ContradictionError — после очередного набора не осталось ни одного кандидата.
// Означает ошибку в порядке обратных преобразований, несовпадение позиции или примитива
type ContradictionError struct {
	Position int
	Sets     int
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("противоречие: после %d наборов не осталось кандидатов для байта %d", e.Sets, e.Position)
}

// InputSizeError — набор не состоит ровно из 256 блоков по 16 байт
type InputSizeError struct {
	Blocks   int
	Index    int // первый блок неверной длины, -1 если неверно число блоков
	BlockLen int
}

func (e *InputSizeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("неверный размер набора: ожидается %d блоков, получено %d", SetSize, e.Blocks)
	}
	return fmt.Sprintf("неверная длина блока %d: ожидается %d байт, получено %d", e.Index, BlockSize, e.BlockLen)
}

type PositionError struct {
	Position int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("позиция байта %d вне диапазона 0..%d", e.Position, BlockSize-1)
}
