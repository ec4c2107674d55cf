package main

import "github.com/intraboard/board/cmd/boardctl/cmd"

func main() {
	cmd.Execute()
}
