package main

import "github.com/mselser95/solana-cycle-arb/cmd"

func main() {
	cmd.Execute()
}
