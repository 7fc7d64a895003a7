package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ledgerwatch/log/v3"

	"github.com/Wbeaching/Integral-attack-on-AES/config"
	"github.com/Wbeaching/Integral-attack-on-AES/integral"
	"github.com/Wbeaching/Integral-attack-on-AES/rijndael"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML-конфигурации")
	key := flag.String("key", config.ReferenceKey, "ключ шифрования (hex, 16 байт)")
	position := flag.Int("position", 0, "позиция активного байта и байта подключа")
	maxSets := flag.Int("max-sets", integral.DefaultMaxSets, "максимальное число наборов")
	workers := flag.Int("workers", 1, "число потоков перебора")
	expected := flag.Int("expected", 1, "число кандидатов, при котором байт считается найденным")
	logLevel := flag.String("log-level", "info", "уровень логирования")
	printMetrics := flag.Bool("metrics", false, "вывести метрики в формате Prometheus")
	flag.Parse()

	log.Root().SetHandler(log.LvlFilterHandler(log.LvlInfo, log.StderrHandler))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fatal("Ошибка загрузки конфигурации", err)
		}
		cfg = loaded
	}

	// явно заданные флаги важнее файла
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "key":
			cfg.Key = *key
		case "position":
			cfg.Position = *position
		case "max-sets":
			cfg.MaxSets = *maxSets
		case "workers":
			cfg.Workers = *workers
		case "expected":
			cfg.ExpectedSurvivors = *expected
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fatal("Неверная конфигурация", err)
	}

	lvl, err := log.LvlFromString(cfg.LogLevel)
	if err != nil {
		fatal("Неверный уровень логирования", err)
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StderrHandler))

	result, session, ks, err := run(cfg)
	if err != nil {
		var contradiction *integral.ContradictionError
		if errors.As(err, &contradiction) {
			log.Error("Противоречие: проверьте порядок обратных преобразований", "sets", contradiction.Sets)
		}
		fatal("Ошибка атаки", err)
	}

	fmt.Printf("Позиция байта: %d\n", result.Position)
	fmt.Printf("Обработано наборов: %d\n", result.Sets)
	fmt.Printf("Состояние: %s\n", result.State)
	fmt.Printf("Кандидаты (%d):", len(result.Survivors))
	for _, g := range result.Survivors {
		fmt.Printf(" 0x%02x", g)
	}
	fmt.Println()
	fmt.Printf("Байт последнего раундового ключа: 0x%02x\n", ks[len(ks)-1][result.Position])

	if *printMetrics {
		session.WriteMetrics(os.Stdout)
	}
}

func run(cfg *config.Config) (*integral.Result, *integral.Session, rijndael.Schedule, error) {
	key, err := cfg.CipherKey()
	if err != nil {
		return nil, nil, nil, err
	}
	constants, err := cfg.SetConstants()
	if err != nil {
		return nil, nil, nil, err
	}

	r, err := rijndael.New(cfg.Rounds)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ошибка создания Rijndael: %w", err)
	}
	ks, err := r.ExpandKey(key)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ошибка расширения ключа: %w", err)
	}

	session, err := integral.NewSession(r, ks, integral.Options{
		Position:          cfg.Position,
		MaxSets:           cfg.MaxSets,
		Constants:         constants,
		ExpectedSurvivors: cfg.ExpectedSurvivors,
		Workers:           cfg.Workers,
		Logger:            log.New("component", "integral"),
	})
	if err != nil {
		return nil, nil, nil, err
	}

	log.Info("Запуск атаки", "rounds", cfg.Rounds, "position", cfg.Position, "max_sets", cfg.MaxSets, "workers", cfg.Workers)
	result, err := session.Run()
	return result, session, ks, err
}

func fatal(msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}
