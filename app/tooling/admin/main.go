// This program performs administrative tasks for the minter service over
// its public and private web APIs.
package main

import "github.com/memechain/minter/app/tooling/admin/commands"

func main() {
	commands.Execute()
}
