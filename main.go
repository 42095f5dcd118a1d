package main

import "forum-importer/cmd"

func main() {
	cmd.Execute()
}
