package gf

import (
	"errors"
	"fmt"
)

// AESModulus — x^8 + x^4 + x^3 + x + 1 без старшего бита
const AESModulus byte = 0x1B

// ReducibleModulusError возникает при использовании приводимого модуля
type ReducibleModulusError struct {
	Modulus byte
}

func (e *ReducibleModulusError) Error() string {
	return fmt.Sprintf("модуль 0x%02X (0x1%02X) является приводимым над GF(2^8)", e.Modulus, e.Modulus)
}

// ErrZeroInverse возвращается при попытке обратить ноль
var ErrZeroInverse = errors.New("обратный элемент для 0 не существует")

// неприводимые полиномы степеней 1-4; делителя большей степени
// у приводимого полинома степени 8 без делителя меньшей степени быть не может
var smallIrreducibles = []uint16{
	0x02, 0x03, // степень 1
	0x07,       // степень 2
	0x0B, 0x0D, // степень 3
	0x13, 0x19, 0x1F, // степень 4
}

// GF256Service предоставляет операции над полем Галуа GF(2^8) с фиксированным модулем
type GF256Service struct {
	modulus byte
}

// NewGF256Service создает сервис для заданного модуля.
// modulus передается без старшего бита (x^8 подразумевается)
func NewGF256Service(modulus byte) (*GF256Service, error) {
	if !IsIrreducible(modulus) {
		return nil, &ReducibleModulusError{Modulus: modulus}
	}
	return &GF256Service{modulus: modulus}, nil
}

func (s *GF256Service) Modulus() byte {
	return s.modulus
}

// Add выполняет сложение элементов в GF(2^8)
func (s *GF256Service) Add(a, b byte) byte {
	return a ^ b
}

// Multiply выполняет умножение элементов в GF(2^8) по модулю сервиса
func (s *GF256Service) Multiply(a, b byte) byte {
	var result byte
	for b != 0 {
		if b&1 == 1 {
			result ^= a
		}
		highBit := a & 0x80
		a <<= 1
		if highBit != 0 {
			a ^= s.modulus
		}
		b >>= 1
	}
	return result
}

// Inverse находит обратный элемент расширенным алгоритмом Евклида
func (s *GF256Service) Inverse(a byte) (byte, error) {
	if a == 0 {
		return 0, ErrZeroInverse
	}

	r0, r1 := uint16(s.modulus)|0x100, uint16(a)
	t0, t1 := uint16(0), uint16(1)

	for r1 != 0 {
		q, r := polyDivMod(r0, r1)
		r0, r1 = r1, r
		t0, t1 = t1, t0^polyMul(q, t1)
	}

	if r0 != 1 {
		return 0, fmt.Errorf("элемент 0x%02X не обратим", a)
	}
	return byte(t0), nil
}

// IsIrreducible проверяет неприводимость полинома степени 8
// modulus передается без старшего бита (x^8 подразумевается)
func IsIrreducible(modulus byte) bool {
	poly := uint16(modulus) | 0x100
	for _, div := range smallIrreducibles {
		if _, r := polyDivMod(poly, div); r == 0 {
			return false
		}
	}
	return true
}

func degree(poly uint16) int {
	deg := -1
	for poly > 0 {
		poly >>= 1
		deg++
	}
	return deg
}

func polyMul(a, b uint16) uint16 {
	var result uint16
	for b != 0 {
		if b&1 == 1 {
			result ^= a
		}
		a <<= 1
		b >>= 1
	}
	return result
}

func polyDivMod(a, b uint16) (quotient, remainder uint16) {
	degB := degree(b)
	for degA := degree(a); a != 0 && degA >= degB; degA = degree(a) {
		shift := degA - degB
		quotient ^= 1 << shift
		a ^= b << shift
	}
	return quotient, a
}
