package main

import "github.com/mytheresa/catalog-service/cmd/catalog/commands"

func main() {
	commands.Execute()
}
