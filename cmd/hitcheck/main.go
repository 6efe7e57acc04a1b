// Command hitcheck разбирает, проверяет и отправляет хиты Measurement Protocol из терминала.
//
//	hitcheck parse 'v=1&t=pageview&tid=UA-1&cid=1&dp=%2F'
//	hitcheck validate 'v=1&t=pageview'
//	echo 'v=1&t=event&ec=video' | hitcheck send -
package main

import (
	"log"
	"os"
)

func main() {
	log.SetFlags(0)

	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		log.Fatalf("hitcheck: %v", err)
	}
}
