package main

import "caseburn/cmd"

func main() {
	cmd.Execute()
}
