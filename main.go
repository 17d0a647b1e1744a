package main

import "github.com/drgolem/audiostream/cmd"

func main() {
	cmd.Execute()
}
