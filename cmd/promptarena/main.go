// Command promptarena runs timed prompt engineering battles from the terminal
// or as a local web server.
package main

import "github.com/agusx1211/promptarena/internal/cli"

func main() {
	cli.Execute()
}
