package main

import "github.com/seantiz/tasksolver/internal/cli"

func main() {
	cli.Execute()
}
