package main

import "github.com/KoutaMatsushita/aim-ai-coach-sub000/cmd"

func main() {
	cmd.Execute()
}
