// Command recipepipe ingests recipe pages into a Markdown content repository.
package main

import "github.com/gaurav-prasanna/recipepipe/cmd"

func main() {
	cmd.Execute()
}
