// Command solfa drives the solfège engine from the terminal: play a
// programmed loop, list synthesizer devices or serve the HTTP control API.
package main

func main() {
	Execute()
}
