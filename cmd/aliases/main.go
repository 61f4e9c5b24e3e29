package main

import "github.com/lu-zhengda/aliases/internal/cli"

func main() {
	cli.Execute()
}
