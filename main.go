package main

import "pyboost/internal/pyboost"

func main() {
	pyboost.Main()
}
