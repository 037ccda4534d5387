// The simulator command runs a scripted kiosk backend: it walks every
// connected kiosk through the face scan, serves a scan report, honors
// the approval decision, and then streams synthetic hand telemetry.
package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"airkiosk/simulator/cert"
	"airkiosk/simulator/server"
)

func main() {
	host := flag.String("host", "", "Host address to bind to (default: all interfaces, 0.0.0.0)")
	port := flag.Int("port", 8000, "Port to listen on (default: 8000)")
	fps := flag.Int("fps", 30, "Telemetry frame rate")
	score := flag.Float64("score", -1, "Fixed scan score 0-100 (default: random per session)")
	useTLS := flag.Bool("tls", false, "Serve wss:// with a self-signed certificate")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -port 8000\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -score 85 -fps 24\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -tls -host 192.168.1.100\n", os.Args[0])
	}
	flag.Parse()

	if *score > 100 {
		log.Fatalf("Score must be at most 100, got %v", *score)
	}

	feed := server.NewFeed(*score)
	sim := server.NewServer(feed, *fps)
	go sim.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", sim.HandleStream)
	mux.HandleFunc("/approve", sim.HandleApprove)
	mux.HandleFunc("/health", sim.HandleHealth)
	mux.HandleFunc("/status", sim.HandleStatus)

	listenHost := *host
	if listenHost == "" {
		listenHost = "0.0.0.0"
	}
	listenAddr := net.JoinHostPort(listenHost, strconv.Itoa(*port))

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: mux,
	}

	if *useTLS {
		certPath := filepath.Join(".", "cert.pem")
		keyPath := filepath.Join(".", "key.pem")
		tlsCert, err := cert.LoadOrGenerateCert(certPath, keyPath)
		if err != nil {
			log.Fatalf("Failed to setup TLS: %v", err)
		}
		srv.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{*tlsCert},
			MinVersion:   tls.VersionTLS12,
		}
		log.Printf("Simulator starting on wss://%s/ws", listenAddr)
		log.Printf("Using self-signed certificate (kiosks skip verification)")
		log.Fatal(srv.ListenAndServeTLS("", ""))
	}

	log.Printf("Simulator starting on ws://%s/ws", listenAddr)
	log.Fatal(srv.ListenAndServe())
}
