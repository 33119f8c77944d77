// The llcpolicy command replays cache access traces against a replacement
// engine and records heartbeat statistics into a SQLite database.
package main

func main() {
	Execute()
}
