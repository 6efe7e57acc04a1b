package lib

import (
	"net/url"
	"os"
)

func encode(v url.Values) string {
	return v.Encode() // want "url.Values.Encode меняет порядок параметров"
}

func escape(s string) string {
	return url.QueryEscape(s) // want "url.QueryEscape экранирует запятые"
}

func path(s string) string {
	return url.PathEscape(s)
}

func exit() {
	os.Exit(1)
}
