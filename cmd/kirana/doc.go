// Package cmd/kirana provides the Kirana backend CLI.
//
// Build and run from the repository root:
//
//	go run ./cmd/kirana serve      # start the API server
//	go run ./cmd/kirana seed       # seed the admin user and demo catalogue
//	go run ./cmd/kirana route:list # print the API route table
//
// Configuration is read from config/app.json and .env; see config.Load.
package main
