package main

import "github.com/naka-gawa/oss-stats/cmd"

func main() {
	cmd.Execute()
}
