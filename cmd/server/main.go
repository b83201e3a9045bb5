package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/lojf/parish/internal/config"
	"github.com/lojf/parish/internal/db"
	"github.com/lojf/parish/internal/web"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := cfg.Logger()
	logrus.SetLevel(log.GetLevel())

	if err := db.Init(cfg.DBPath); err != nil {
		log.Fatalf("db init: %v", err)
	}

	r := web.Router(web.Options{PublicURL: cfg.PublicURL})

	log.WithField("addr", cfg.Addr).Info("parish backend listening")
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal(err)
	}
}
