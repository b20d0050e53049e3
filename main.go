package main

import (
	"context"
	"flag"
	"fmt"
	"git.thinkinpower.net/ribdb/bdata"
	"git.thinkinpower.net/ribdb/data"
	"git.thinkinpower.net/ribdb/middleware"
	"git.thinkinpower.net/ribdb/otp"
	"git.thinkinpower.net/ribdb/route"
	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func setMode(mode string) {
	switch mode {
	case data.RunModeDev:
		gin.SetMode(gin.DebugMode)
	case data.RunModeTest:
		gin.SetMode(gin.TestMode)
	case data.RunModeRelease:
		gin.SetMode(gin.ReleaseMode)
	}
}

func main() {
	logger.SetFormatter(&logger.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logger.InfoLevel)

	configFile := flag.String("c", "", "-c /etc/ribdb/ribdb.yaml")
	port := flag.Int("p", 8080, "-p 8080")
	mode := flag.String("m", "dev", "-m [dev|test|release]")
	dataDir := flag.String("d", "./test", "-d /home/testuser/ribdata")
	flag.Parse()

	cfg, err := data.Load(*configFile)
	if err != nil {
		logger.Fatalf("load config error: %s", err)
	}
	// flags given on the command line win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Server.Port = *port
		case "m":
			cfg.Server.Mode = *mode
		case "d":
			cfg.Data.Dir = *dataDir
		}
	})
	if err = cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %s", err)
	}
	if level, err := logger.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, keep info", cfg.Log.Level)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	banks := bdata.NewBankDirectory(cfg.Data.Dir)
	if err = banks.Load(); err != nil {
		logger.Fatalf("load bank directory error: %s", err)
	}
	go func() {
		if err := banks.Watch(ctx); err != nil {
			logger.Errorf("bank directory watcher stopped: %s", err)
		}
	}()

	db := bdata.NewMemoryDatabase()
	if err = db.Init(bdata.BeneficiaryConfig{DataDir: cfg.Data.Dir}); err != nil {
		logger.Fatalf("init beneficiary database error: %s", err)
	}
	registry := bdata.NewRegistry(db, banks, cfg.Rib.IbanPrefix)

	otps := otp.NewStore(otp.Config{
		TTL:         cfg.Otp.TTL,
		MaxAttempts: cfg.Otp.MaxAttempts,
		Length:      cfg.Otp.Length,
	}, otp.LogSender{})
	if cfg.Otp.PurgeInterval > 0 {
		go otps.Run(ctx, cfg.Otp.PurgeInterval)
	}

	//start http server
	logger.Info("starting http server...")
	setMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.Log())
	r.Use(middleware.Recovery())
	route.Register(r, registry, otps)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
	go func() {
		logger.Infof("http server listening, port: %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down Server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server Shutdown failure.", err)
	}
	logger.Info("Server exit.")
}
