package main

import (
	"errors"
	"log"
	"os"
	"strconv"
	"thywilluche/internal/pkg/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// 用法: migrate [up|down N|version]，默认 up
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.New("file://migrations", cfg.Database.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		up(m)
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil || steps <= 0 {
				log.Fatalf("invalid step count %q", os.Args[2])
			}
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal(err)
		}
		log.Printf("Rolled back %d migration(s)", steps)
	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal(err)
		}
		log.Printf("version=%d dirty=%v", v, dirty)
	default:
		log.Fatalf("unknown command %q", cmd)
	}
}

func up(m *migrate.Migrate) {
	err := m.Up()
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		log.Println("Migration successful")
		return
	}

	// dirty 状态: 回退到上一个干净版本后重试
	var dirty migrate.ErrDirty
	if !errors.As(err, &dirty) {
		log.Fatal(err)
	}
	prev := dirty.Version - 1
	if prev < 1 {
		prev = -1 // NilVersion
	}
	log.Printf("Database is dirty at version %d, forcing %d...", dirty.Version, prev)
	if err := m.Force(prev); err != nil {
		log.Fatal("Failed to force version:", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal(err)
	}
	log.Println("Migration successful")
}
