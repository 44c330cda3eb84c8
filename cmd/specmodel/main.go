package main

import "github.com/mvp-joe/specmodel/internal/cli"

func main() {
	cli.Execute()
}
