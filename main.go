package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/jordanwei/bipcal/cmd/root"
)

func main() {
	root.Execute()
}
