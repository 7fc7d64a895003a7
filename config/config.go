package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Wbeaching/Integral-attack-on-AES/rijndael"
)

// AttackRounds — единственное число раундов, для которого выведено интегральное свойство
// (3 раунда сбалансированы + 1 снимаемый раунд)
const AttackRounds = 4

// ReferenceKey — ключ шифрования из эталонного примера FIPS-197
const ReferenceKey = "000102030405060708090a0b0c0d0e0f"

type Config struct {
	Key               string `yaml:"key"`
	Rounds            int    `yaml:"rounds"`
	Position          int    `yaml:"position"`
	MaxSets           int    `yaml:"max_sets"`
	Constants         []int  `yaml:"constants"`
	ExpectedSurvivors int    `yaml:"expected_survivors"`
	Workers           int    `yaml:"workers"`
	LogLevel          string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Key:               ReferenceKey,
		Rounds:            AttackRounds,
		Position:          0,
		MaxSets:           4,
		ExpectedSurvivors: 1,
		Workers:           1,
		LogLevel:          "info",
	}
}

// Load читает YAML-файл поверх значений по умолчанию
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия конфигурации: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Rounds != AttackRounds {
		return fmt.Errorf("интегральное свойство выведено только для %d раундов, получено %d", AttackRounds, c.Rounds)
	}
	if _, err := c.CipherKey(); err != nil {
		return err
	}
	if c.Position < 0 || c.Position >= rijndael.BlockSize {
		return fmt.Errorf("позиция байта %d вне диапазона 0..%d", c.Position, rijndael.BlockSize-1)
	}
	if c.MaxSets < 1 || c.MaxSets > 256 {
		return fmt.Errorf("max_sets должно быть от 1 до 256, получено %d", c.MaxSets)
	}
	if _, err := c.SetConstants(); err != nil {
		return err
	}
	if c.ExpectedSurvivors < 1 || c.ExpectedSurvivors > 256 {
		return fmt.Errorf("expected_survivors должно быть от 1 до 256, получено %d", c.ExpectedSurvivors)
	}
	if c.Workers < 1 {
		return errors.New("workers должно быть не меньше 1")
	}
	return nil
}

func (c *Config) CipherKey() ([]byte, error) {
	key, err := hex.DecodeString(c.Key)
	if err != nil {
		return nil, fmt.Errorf("ключ должен быть в шестнадцатеричном виде: %w", err)
	}
	if len(key) != rijndael.KeySize {
		return nil, fmt.Errorf("неверная длина ключа: ожидается %d байт, получено %d", rijndael.KeySize, len(key))
	}
	return key, nil
}

// SetConstants возвращает константы наборов; nil — константы по умолчанию
func (c *Config) SetConstants() ([]byte, error) {
	if len(c.Constants) == 0 {
		return nil, nil
	}

	out := make([]byte, len(c.Constants))
	seen := make(map[int]bool, len(c.Constants))
	for i, v := range c.Constants {
		if v < 0 || v > 0xFF {
			return nil, fmt.Errorf("константа %d вне диапазона байта", v)
		}
		if seen[v] {
			return nil, fmt.Errorf("константа 0x%02X повторяется", v)
		}
		seen[v] = true
		out[i] = byte(v)
	}
	return out, nil
}
