// The main package for the yoweb-scraper executable.
package main

import "github.com/JakeFAU/yoweb-scraper/cmd"

func main() {
	cmd.Execute()
}
