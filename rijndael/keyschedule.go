package rijndael

import "fmt"

// ExpandKey строит rounds+1 раундовых ключей из 128-битного ключа
func (r *Rijndael) ExpandKey(key []byte) (Schedule, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("неверная длина ключа: ожидается %d, получено %d", KeySize, len(key))
	}

	const nk = KeySize / 4
	totalWords := 4 * (r.rounds + 1)
	w := make([][4]byte, totalWords)

	for i := 0; i < nk; i++ {
		copy(w[i][:], key[i*4:(i+1)*4])
	}

	rcon := byte(0x01)
	for i := nk; i < totalWords; i++ {
		temp := w[i-1]

		if i%nk == 0 {
			temp = r.subWord(rotWord(temp))
			temp[0] ^= rcon
			rcon = r.gf.Multiply(rcon, 0x02)
		}

		for j := 0; j < 4; j++ {
			w[i][j] = w[i-nk][j] ^ temp[j]
		}
	}

	ks := make(Schedule, r.rounds+1)
	for round := range ks {
		for col := 0; col < 4; col++ {
			copy(ks[round][4*col:4*col+4], w[4*round+col][:])
		}
	}
	return ks, nil
}

func rotWord(word [4]byte) [4]byte {
	return [4]byte{word[1], word[2], word[3], word[0]}
}

func (r *Rijndael) subWord(word [4]byte) [4]byte {
	for i := range word {
		word[i] = r.sBox[word[i]]
	}
	return word
}
