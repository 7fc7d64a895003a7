package integral

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wbeaching/Integral-attack-on-AES/rijndael"
)

func encryptedSet(t *testing.T, c Encrypter, ks rijndael.Schedule, constant byte, position int) *CipherTextSet {
	t.Helper()
	set, err := Generate(constant, position)
	require.NoError(t, err)
	cts, err := EncryptSet(c, set, ks)
	require.NoError(t, err)
	return cts
}

func toBlocks(set *CipherTextSet) [][]byte {
	blocks := make([][]byte, len(set))
	for i := range set {
		blocks[i] = append([]byte{}, set[i][:]...)
	}
	return blocks
}

// reorderedInverter снимает подстановку до ключа
type reorderedInverter struct {
	*rijndael.Rijndael
}

func (r reorderedInverter) UndoAddRoundKey(key, state *rijndael.Block) {
	table := r.InvSBox()
	r.Rijndael.UndoSubBytes(state, &table)
	r.Rijndael.UndoAddRoundKey(key, state)
}

func (r reorderedInverter) UndoSubBytes(*rijndael.Block, *[256]byte) {}

func TestCorrectGuessSumsToZero(t *testing.T) {
	r, ks := referenceCipher(t)
	elim, err := NewEliminator(r, 0, 1)
	require.NoError(t, err)

	for _, constant := range []byte{0x00, 0x01, 0x02, 0x03} {
		cts := encryptedSet(t, r, ks, constant, 0)
		assert.Equal(t, byte(0), elim.Sum(cts, ks[4][0]), "константа 0x%02X", constant)
	}
}

func TestEliminateConvergesToTerminalKeyByte(t *testing.T) {
	r, ks := referenceCipher(t)
	elim, err := NewEliminator(r, 0, 1)
	require.NoError(t, err)

	mask := NewCandidateMask()
	require.NoError(t, elim.EliminateSet(encryptedSet(t, r, ks, 0x00, 0), mask))
	assert.Equal(t, []byte{0x47, 0x4C}, mask.Survivors())

	require.NoError(t, elim.EliminateSet(encryptedSet(t, r, ks, 0x01, 0), mask))
	assert.Equal(t, []byte{0x47}, mask.Survivors())
	assert.Equal(t, ks[4][0], mask.Survivors()[0])
}

func TestEliminateRecoversRoundOneMaterial(t *testing.T) {
	r, ks := referenceCipher(t)

	// последний раунд на ключевом материале первого раунда d6aa74fd...
	synthetic := append(rijndael.Schedule{}, ks...)
	synthetic[4] = ks[1]

	elim, err := NewEliminator(r, 0, 1)
	require.NoError(t, err)

	mask := NewCandidateMask()
	require.NoError(t, elim.EliminateSet(encryptedSet(t, r, synthetic, 0x00, 0), mask))
	assert.Equal(t, []byte{0xD6, 0xDD}, mask.Survivors())

	require.NoError(t, elim.EliminateSet(encryptedSet(t, r, synthetic, 0x01, 0), mask))
	assert.Equal(t, []byte{0xD6}, mask.Survivors())
}

func TestEliminateOtherPositions(t *testing.T) {
	r, ks := referenceCipher(t)

	cases := []struct {
		position int
		first    []byte
		want     byte
	}{
		{5, []byte{0x35, 0x67, 0xB6}, 0x35},
		{13, []byte{0x05, 0xBA}, 0x05},
	}
	for _, c := range cases {
		elim, err := NewEliminator(r, c.position, 1)
		require.NoError(t, err)

		mask := NewCandidateMask()
		require.NoError(t, elim.EliminateSet(encryptedSet(t, r, ks, 0x00, c.position), mask))
		assert.Equal(t, c.first, mask.Survivors(), "позиция %d", c.position)

		require.NoError(t, elim.EliminateSet(encryptedSet(t, r, ks, 0x01, c.position), mask))
		assert.Equal(t, []byte{c.want}, mask.Survivors(), "позиция %d", c.position)
		assert.Equal(t, ks[4][c.position], c.want)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	r, ks := referenceCipher(t)
	cts := encryptedSet(t, r, ks, 0x02, 0)

	sequential, err := NewEliminator(r, 0, 1)
	require.NoError(t, err)
	parallel, err := NewEliminator(r, 0, 8)
	require.NoError(t, err)

	assert.Equal(t, sequential.Verdicts(cts), parallel.Verdicts(cts))
}

func TestEliminateIsDeterministic(t *testing.T) {
	r, ks := referenceCipher(t)

	run := func() CandidateMask {
		elim, err := NewEliminator(r, 0, 4)
		require.NoError(t, err)
		mask := NewCandidateMask()
		for _, constant := range []byte{0x00, 0x01} {
			require.NoError(t, elim.Eliminate(toBlocks(encryptedSet(t, r, ks, constant, 0)), mask))
		}
		return *mask
	}
	assert.Equal(t, run(), run())
}

func TestEliminateIsMonotonic(t *testing.T) {
	r, ks := referenceCipher(t)
	elim, err := NewEliminator(r, 0, 1)
	require.NoError(t, err)

	mask := NewCandidateMask()
	prev := mask.Count()
	for _, constant := range []byte{0x10, 0x20, 0x30, 0x40} {
		require.NoError(t, elim.EliminateSet(encryptedSet(t, r, ks, constant, 0), mask))
		require.LessOrEqual(t, mask.Count(), prev)
		require.True(t, mask.Plausible(ks[4][0]))
		prev = mask.Count()
	}

	// набор из одинаковых блоков сбалансирован при любой догадке и маску не меняет
	before := *mask
	require.NoError(t, elim.EliminateSet(new(CipherTextSet), mask))
	assert.Equal(t, before, *mask)
}

func TestEliminateRejectsShortSet(t *testing.T) {
	r, ks := referenceCipher(t)
	elim, err := NewEliminator(r, 0, 1)
	require.NoError(t, err)

	blocks := toBlocks(encryptedSet(t, r, ks, 0x00, 0))
	mask := NewCandidateMask()

	err = elim.Eliminate(blocks[:200], mask)
	var sizeErr *InputSizeError
	require.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, 200, sizeErr.Blocks)
	assert.Equal(t, 256, mask.Count())

	blocks[3] = blocks[3][:8]
	err = elim.Eliminate(blocks, mask)
	require.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, 3, sizeErr.Index)
	assert.Equal(t, 256, mask.Count())
}

func TestEliminateReportsContradiction(t *testing.T) {
	r, _ := referenceCipher(t)
	elim, err := NewEliminator(r, 0, 1)
	require.NoError(t, err)

	// 255 нулевых блоков и один с единицей: сумма SI(g) ^ SI(g^1) не равна нулю ни при каком g
	set := new(CipherTextSet)
	set[0][0] = 1

	mask := NewCandidateMask()
	err = elim.EliminateSet(set, mask)
	var contradiction *ContradictionError
	require.True(t, errors.As(err, &contradiction))
	assert.Equal(t, 0, mask.Count())
}

func TestEliminateWrongOrderContradicts(t *testing.T) {
	r, ks := referenceCipher(t)
	elim, err := NewEliminator(reorderedInverter{r}, 0, 1)
	require.NoError(t, err)

	mask := NewCandidateMask()
	err = elim.EliminateSet(encryptedSet(t, r, ks, 0x00, 0), mask)
	var contradiction *ContradictionError
	assert.True(t, errors.As(err, &contradiction))
}

func TestNewEliminatorRejectsPosition(t *testing.T) {
	r, _ := referenceCipher(t)
	_, err := NewEliminator(r, 16, 1)
	var posErr *PositionError
	assert.True(t, errors.As(err, &posErr))
}
