package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	key, err := cfg.CipherKey()
	require.NoError(t, err)
	assert.Equal(t, byte(0x0F), key[15])

	constants, err := cfg.SetConstants()
	require.NoError(t, err)
	assert.Nil(t, constants)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
key: 2b7e151628aed2a6abf7158809cf4f3c
position: 4
max_sets: 3
constants: [0, 1, 255]
workers: 8
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2b7e151628aed2a6abf7158809cf4f3c", cfg.Key)
	assert.Equal(t, AttackRounds, cfg.Rounds)
	assert.Equal(t, 4, cfg.Position)
	assert.Equal(t, 3, cfg.MaxSets)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 1, cfg.ExpectedSurvivors)
	assert.Equal(t, "debug", cfg.LogLevel)

	constants, err := cfg.SetConstants()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0xFF}, constants)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"неизвестное поле":   "keys: 00\n",
		"число раундов":      "rounds: 5\n",
		"ключ не hex":        "key: zz\n",
		"короткий ключ":      "key: 0001\n",
		"позиция":            "position: 16\n",
		"повтор константы":   "constants: [3, 3]\n",
		"константа не байт":  "constants: [256]\n",
		"наборы":             "max_sets: 0\n",
		"ожидаемое число":    "expected_survivors: 0\n",
		"потоки":             "workers: 0\n",
	}
	for name, body := range cases {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, name)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadExample(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "attack.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ReferenceKey, cfg.Key)
	assert.Equal(t, 4, cfg.Workers)

	constants, err := cfg.SetConstants()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3}, constants)
}
