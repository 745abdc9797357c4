package main

import "github.com/Arpanmondalz/zen-spend/internal/cli"

func main() {
	cli.Execute()
}
