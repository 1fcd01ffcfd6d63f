// Command cityguide runs the city directory bot and its maintenance jobs.
//
// Exit codes: 0 = success, 1 = error.
package main

func main() {
	Execute()
}
