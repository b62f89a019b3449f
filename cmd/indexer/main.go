package main

import "github.com/samims/indexer/internal/cli"

func main() {
	cli.Execute()
}
