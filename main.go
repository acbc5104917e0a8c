package main

import "github.com/frahmantamala/school-store/cmd"

func main() {
	cmd.Execute()
}
