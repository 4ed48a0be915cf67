// Package main prints the argon2id hash for ADMIN_PASSWORD_HASH.
//
// Usage:
//
//	go run ./cmd/adminhash            # reads the password from stdin
//	go run ./cmd/adminhash -verify '$argon2id$...'
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/arcanaoficial/arcana-server/internal/auth"
)

var verify = flag.String("verify", "", "Check the password against this hash instead of hashing it")

func main() {
	flag.Parse()

	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintf(os.Stderr, "read password: %v\n", err)
		os.Exit(1)
	}
	password := strings.TrimRight(line, "\r\n")

	if *verify != "" {
		if err := auth.ValidateHash(*verify); err != nil {
			fmt.Fprintf(os.Stderr, "invalid hash: %v\n", err)
			os.Exit(1)
		}
		if !auth.VerifyPassword(*verify, password) {
			fmt.Println("mismatch")
			os.Exit(1)
		}
		fmt.Println("ok")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
