package main

func main() {
	startWithDig()
}
