package integral

import (
	"fmt"

	"github.com/Wbeaching/Integral-attack-on-AES/rijndael"
)

const (
	SetSize   = 256
	BlockSize = rijndael.BlockSize
)

// ActiveByteSet — 256 открытых текстов: байт position пробегает все значения,
// остальные 15 байт равны одной константе
type ActiveByteSet [SetSize]rijndael.Block

// CipherTextSet — образ ActiveByteSet под полным шифром
type CipherTextSet [SetSize]rijndael.Block

// Encrypter шифрует блок на заданных раундовых ключах
type Encrypter interface {
	Encrypt(plaintext rijndael.Block, ks rijndael.Schedule) (rijndael.Block, error)
}

func checkPosition(position int) error {
	if position < 0 || position >= BlockSize {
		return &PositionError{Position: position}
	}
	return nil
}

// Generate строит набор с активным байтом position и константой constant в остальных байтах
func Generate(constant byte, position int) (*ActiveByteSet, error) {
	if err := checkPosition(position); err != nil {
		return nil, err
	}

	set := new(ActiveByteSet)
	for i := range set {
		for j := range set[i] {
			set[i][j] = constant
		}
		set[i][position] = byte(i)
	}
	return set, nil
}

// XorSum возвращает сумму по модулю 2 байтов position всех блоков набора
func (s *ActiveByteSet) XorSum(position int) byte {
	var sum byte
	for i := range s {
		sum ^= s[i][position]
	}
	return sum
}

// Verify проверяет интегральное свойство: байт position принимает каждое значение
// ровно один раз, остальные байты совпадают во всем наборе
func (s *ActiveByteSet) Verify(position int) error {
	if err := checkPosition(position); err != nil {
		return err
	}

	var seen [SetSize]bool
	for i := range s {
		v := s[i][position]
		if seen[v] {
			return fmt.Errorf("значение 0x%02X активного байта повторяется в блоке %d", v, i)
		}
		seen[v] = true

		for j := range s[i] {
			if j != position && s[i][j] != s[0][j] {
				return fmt.Errorf("байт %d блока %d отличается от константы набора", j, i)
			}
		}
	}

	if sum := s.XorSum(position); sum != 0 {
		return fmt.Errorf("сумма активного байта равна 0x%02X", sum)
	}
	return nil
}

// NewCipherTextSet проверяет размеры и копирует блоки в набор фиксированного размера
func NewCipherTextSet(blocks [][]byte) (*CipherTextSet, error) {
	if len(blocks) != SetSize {
		return nil, &InputSizeError{Blocks: len(blocks), Index: -1}
	}

	set := new(CipherTextSet)
	for i, b := range blocks {
		if len(b) != BlockSize {
			return nil, &InputSizeError{Blocks: len(blocks), Index: i, BlockLen: len(b)}
		}
		copy(set[i][:], b)
	}
	return set, nil
}

// EncryptSet шифрует каждый блок набора на раундовых ключах ks
func EncryptSet(c Encrypter, set *ActiveByteSet, ks rijndael.Schedule) (*CipherTextSet, error) {
	out := new(CipherTextSet)
	for i := range set {
		ct, err := c.Encrypt(set[i], ks)
		if err != nil {
			return nil, fmt.Errorf("ошибка шифрования блока %d: %w", i, err)
		}
		out[i] = ct
	}
	return out, nil
}
