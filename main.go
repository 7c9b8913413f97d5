package main

import "github.com/sebas80sebas/zabreport/cmd"

func main() {
	cmd.Execute()
}
