package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"papelaria-pdv/internal/backup"
	"papelaria-pdv/internal/config"
	"papelaria-pdv/internal/database"
	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/logger"
	"papelaria-pdv/internal/reminder"
	"papelaria-pdv/internal/router"
	"papelaria-pdv/internal/storage"
	"papelaria-pdv/internal/util"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, logFile, err := logger.NewFile(cfg.Log.File, logger.ParseLevel(cfg.Log.Level))
	if err != nil {
		log.Fatalf("open log: %v", err)
	}
	defer logFile.Close()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("timezone: %v", err)
	}

	if err := os.MkdirAll(cfg.Backup.Dir, 0o755); err != nil {
		log.Fatalf("create backup dir: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer database.Close(db)

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	key := cfg.Security.EncryptionKey
	if key == "" {
		if key, err = util.RandomString(32); err != nil {
			log.Fatalf("generate encryption key: %v", err)
		}
		cfg.Security.EncryptionKey = key
		lg.Warn("security.encryption_key vazio: chave gerada, backups deste arranque não poderão ser lidos depois de reiniciar")
	}

	store := storage.NewGormStore(db, cfg.Database.MaxBytes)
	l := ledger.New(store, ledger.WithLocation(loc), ledger.WithLogger(lg))
	if err := l.Load(); err != nil {
		if !errors.Is(err, ledger.ErrCorruptState) {
			log.Fatalf("load ledger: %v", err)
		}
		lg.Warn("estado guardado ilegível, a usar valores padrão", "error", err)
	}

	backups := backup.NewManager(db, l, key, cfg.Backup.Dir, lg)
	rem := reminder.New(cfg.Backup.ReminderInterval(), lg, func() {
		if !cfg.Backup.AutoWrite {
			return
		}
		if _, err := backups.Create(true); err != nil {
			lg.Error("backup automático falhou", "error", err)
		}
	})
	rem.Start()
	defer rem.Stop()

	r := router.SetupRouter(cfg, router.Deps{
		DB:       db,
		Ledger:   l,
		Backups:  backups,
		Reminder: rem,
		Log:      lg,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	lg.Info("server listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		lg.Error("run server", "error", err)
		os.Exit(1)
	}
}
