// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"crypto/tls"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/c2FmZQ/storage"

	"github.com/ttbt-io/diamondtracker/backend"
	"github.com/ttbt-io/diamondtracker/config"
)

var configFile = flag.String("config", "", "Path to a YAML config file")

// main starts the web server and registers the API handlers.
func main() {
	flags := config.Default()
	flags.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(*configFile, flag.CommandLine)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var mainTLSCert *tls.Certificate
	if cfg.TLSCert != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			log.Fatalf("Failed to load main TLS cert/key: %v", err)
		}
		mainTLSCert = &cert
	}

	// Initialize Encryption Key and Storage
	masterKey, err := backend.OpenMasterKey(cfg.DataDir, os.Getenv(backend.MasterKeyEnv))
	if err != nil {
		log.Fatalf("Critical Security Error: %v", err)
	}
	store := storage.New(cfg.DataDir, masterKey)
	store.EnableCompression(true)

	server, err := backend.StartServer(backend.Options{
		Addr:           cfg.Addr,
		Cert:           mainTLSCert,
		DataDir:        cfg.DataDir,
		UseMockAuth:    cfg.UseMockAuth,
		Debug:          cfg.Debug,
		Storage:        store,
		SettleDelay:    cfg.SettleDelay,
		Highlights:     cfg.Highlights,
		TickInterval:   cfg.TickInterval,
		AuthCookieName: cfg.AuthCookieName,
		AuthJWKSURL:    cfg.AuthJWKSURL,
		AuthSecret:     cfg.AuthSecret,
	})
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	// Wait for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	} else {
		log.Println("Gracefully stopped.")
	}
}
