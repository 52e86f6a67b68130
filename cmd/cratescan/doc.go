// Command cratescan scans a local music library and reports which catalog
// albums are missing from it.
package main
