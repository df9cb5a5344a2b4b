package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
	"github.com/t9fiction/Solana-Task-Manager/internal/task"
)

// Prints the task account address for an (author, title) pair without
// touching the ledger. Useful for debugging client derivations.
func main() {
	author := flag.String("author", "", "author wallet address (base58)")
	title := flag.String("title", "", "task title")
	program := flag.String("program", task.ProgramID.String(), "program ID (base58)")
	flag.Parse()

	if *author == "" || *title == "" {
		log.Fatal("usage: derive -author <base58> -title <title> [-program <base58>]")
	}

	authorPk, err := solana.PublicKeyFromBase58(*author)
	if err != nil {
		log.Fatalf("invalid author: %v", err)
	}
	programPk, err := solana.PublicKeyFromBase58(*program)
	if err != nil {
		log.Fatalf("invalid program ID: %v", err)
	}
	if err := task.ValidateTitle(*title); err != nil {
		log.Fatalf("invalid title: %v", err)
	}

	addr, bump, err := task.DeriveAddress(programPk, authorPk, *title)
	if err != nil {
		log.Fatalf("derive: %v", err)
	}

	fmt.Printf("address=%s bump=%d\n", addr.String(), bump)
}
