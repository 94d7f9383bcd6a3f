package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OdyseeTeam/fast-tx/config"
	"github.com/OdyseeTeam/fast-tx/server"
	"github.com/OdyseeTeam/fast-tx/storage"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logrus.Fatalf("%+v", err)
	}
	if err := cfg.SetupLogging(); err != nil {
		logrus.Fatalf("%+v", err)
	}

	switch cfg.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	}

	if cfg.Mode == config.ModeWalkthrough {
		if err := Walkthrough(nil); err != nil {
			logrus.Errorf("%+v", err)
			os.Exit(1)
		}
		return
	}

	store, err := storage.Open(cfg.Store)
	if err != nil {
		logrus.Fatalf("%+v", err)
	}
	defer store.Close()

	srv := server.New(store, cfg.SessionCookie).Start(cfg.Addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("shutdown: %+v", err)
	}
	logrus.Printf("done")
}
