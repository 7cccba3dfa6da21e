package main

import "github.com/mealpad/recipesync/cmd"

func main() {
	cmd.Execute()
}
