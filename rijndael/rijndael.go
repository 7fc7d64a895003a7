// Package rijndael реализует AES-128 с настраиваемым (уменьшенным) числом раундов
// и обратные раундовые примитивы, на которые опирается интегральная атака.
package rijndael

import (
	"fmt"

	"github.com/Wbeaching/Integral-attack-on-AES/gf"
)

const (
	BlockSize = 16
	KeySize   = 16
	MaxRounds = 10
)

// Block — состояние шифра, байты по столбцам: индекс = строка + 4*столбец
type Block [BlockSize]byte

// Schedule — раундовые ключи; нулевой элемент совпадает с ключом шифрования
type Schedule []Block

type Rijndael struct {
	gf      *gf.GF256Service
	sBox    [256]byte
	invSBox [256]byte
	rounds  int
}

func New(rounds int) (*Rijndael, error) {
	if rounds < 1 || rounds > MaxRounds {
		return nil, fmt.Errorf("неверное число раундов: ожидается от 1 до %d, получено %d", MaxRounds, rounds)
	}

	gfService, err := gf.NewGF256Service(gf.AESModulus)
	if err != nil {
		return nil, err
	}

	r := &Rijndael{
		gf:     gfService,
		rounds: rounds,
	}
	r.initializeSBox()
	return r, nil
}

func (r *Rijndael) Rounds() int {
	return r.rounds
}

func (r *Rijndael) SBox() [256]byte {
	return r.sBox
}

func (r *Rijndael) InvSBox() [256]byte {
	return r.invSBox
}

// Encrypt шифрует блок на раундовых ключах ks; последний раунд без MixColumns
func (r *Rijndael) Encrypt(plaintext Block, ks Schedule) (Block, error) {
	if err := r.checkSchedule(ks); err != nil {
		return Block{}, err
	}

	state := plaintext
	r.addRoundKey(&ks[0], &state)

	for round := 1; round < r.rounds; round++ {
		r.subBytes(&state, &r.sBox)
		r.shiftRows(&state)
		r.mixColumns(&state)
		r.addRoundKey(&ks[round], &state)
	}

	r.subBytes(&state, &r.sBox)
	r.shiftRows(&state)
	r.addRoundKey(&ks[r.rounds], &state)

	return state, nil
}

func (r *Rijndael) Decrypt(ciphertext Block, ks Schedule) (Block, error) {
	if err := r.checkSchedule(ks); err != nil {
		return Block{}, err
	}

	state := ciphertext
	r.UndoAddRoundKey(&ks[r.rounds], &state)
	r.UndoShiftRows(&state)
	r.UndoSubBytes(&state, &r.invSBox)

	for round := r.rounds - 1; round > 0; round-- {
		r.UndoAddRoundKey(&ks[round], &state)
		r.invMixColumns(&state)
		r.UndoShiftRows(&state)
		r.UndoSubBytes(&state, &r.invSBox)
	}

	r.UndoAddRoundKey(&ks[0], &state)
	return state, nil
}

// UndoAddRoundKey снимает сложение с ключом; операция самообратна
func (r *Rijndael) UndoAddRoundKey(key, state *Block) {
	r.addRoundKey(key, state)
}

// UndoShiftRows сдвигает строку i на i байт вправо
func (r *Rijndael) UndoShiftRows(state *Block) {
	var out Block
	for i := range state {
		out[UnshiftedPosition(i)] = state[i]
	}
	*state = out
}

// UndoSubBytes подставляет байты по обратной таблице
func (r *Rijndael) UndoSubBytes(state *Block, table *[256]byte) {
	r.subBytes(state, table)
}

// UnshiftedPosition возвращает позицию, в которую байт pos попадает после UndoShiftRows
func UnshiftedPosition(pos int) int {
	row, col := pos%4, pos/4
	return row + 4*((col+row)%4)
}

func (r *Rijndael) checkSchedule(ks Schedule) error {
	if len(ks) != r.rounds+1 {
		return fmt.Errorf("неверное число раундовых ключей: ожидается %d, получено %d", r.rounds+1, len(ks))
	}
	return nil
}

func (r *Rijndael) initializeSBox() {
	for i := 0; i < 256; i++ {
		val := byte(i)

		// Находим обратный элемент; ноль отображается в ноль
		if val != 0 {
			inv, err := r.gf.Inverse(val)
			if err == nil {
				val = inv
			}
		}

		r.sBox[i] = affineTransform(val)
	}

	for i, v := range r.sBox {
		r.invSBox[v] = byte(i)
	}
}

func affineTransform(b byte) byte {
	result := byte(0)

	for i := 0; i < 8; i++ {
		bit := byte(0)
		bit ^= (b >> i) & 1
		bit ^= (b >> ((i + 4) % 8)) & 1
		bit ^= (b >> ((i + 5) % 8)) & 1
		bit ^= (b >> ((i + 6) % 8)) & 1
		bit ^= (b >> ((i + 7) % 8)) & 1

		result |= bit << i
	}

	return result ^ 0x63
}

func (r *Rijndael) subBytes(state *Block, table *[256]byte) {
	for i := range state {
		state[i] = table[state[i]]
	}
}

func (r *Rijndael) shiftRows(state *Block) {
	var out Block
	for i := range state {
		out[i] = state[UnshiftedPosition(i)]
	}
	*state = out
}

func (r *Rijndael) addRoundKey(key, state *Block) {
	for i := range state {
		state[i] ^= key[i]
	}
}

func (r *Rijndael) mixColumns(state *Block) {
	for col := 0; col < 4; col++ {
		a := [4]byte{state[4*col], state[4*col+1], state[4*col+2], state[4*col+3]}

		state[4*col] = r.gf.Multiply(0x02, a[0]) ^ r.gf.Multiply(0x03, a[1]) ^ a[2] ^ a[3]
		state[4*col+1] = a[0] ^ r.gf.Multiply(0x02, a[1]) ^ r.gf.Multiply(0x03, a[2]) ^ a[3]
		state[4*col+2] = a[0] ^ a[1] ^ r.gf.Multiply(0x02, a[2]) ^ r.gf.Multiply(0x03, a[3])
		state[4*col+3] = r.gf.Multiply(0x03, a[0]) ^ a[1] ^ a[2] ^ r.gf.Multiply(0x02, a[3])
	}
}

func (r *Rijndael) invMixColumns(state *Block) {
	for col := 0; col < 4; col++ {
		a := [4]byte{state[4*col], state[4*col+1], state[4*col+2], state[4*col+3]}

		state[4*col] = r.gf.Multiply(0x0E, a[0]) ^ r.gf.Multiply(0x0B, a[1]) ^ r.gf.Multiply(0x0D, a[2]) ^ r.gf.Multiply(0x09, a[3])
		state[4*col+1] = r.gf.Multiply(0x09, a[0]) ^ r.gf.Multiply(0x0E, a[1]) ^ r.gf.Multiply(0x0B, a[2]) ^ r.gf.Multiply(0x0D, a[3])
		state[4*col+2] = r.gf.Multiply(0x0D, a[0]) ^ r.gf.Multiply(0x09, a[1]) ^ r.gf.Multiply(0x0E, a[2]) ^ r.gf.Multiply(0x0B, a[3])
		state[4*col+3] = r.gf.Multiply(0x0B, a[0]) ^ r.gf.Multiply(0x0D, a[1]) ^ r.gf.Multiply(0x09, a[2]) ^ r.gf.Multiply(0x0E, a[3])
	}
}
